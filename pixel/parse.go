package pixel

import (
	"fmt"
	"strings"
)

var namedColors = map[string]UPixel8{
	"transparent": PackU(0, 0, 0, 0),
	"black":       PackU(0, 0, 0, 255),
	"white":       PackU(255, 255, 255, 255),
	"red":         PackU(255, 0, 0, 255),
	"green":       PackU(0, 255, 0, 255),
	"blue":        PackU(0, 0, 255, 255),
	"yellow":      PackU(255, 255, 0, 255),
	"cyan":        PackU(0, 255, 255, 255),
	"magenta":     PackU(255, 0, 255, 255),
	"gray":        PackU(128, 128, 128, 255),
	"grey":        PackU(128, 128, 128, 255),
}

// ParseHex parses #RGB, #RGBA, #RRGGBB, #RRGGBBAA or a basic colour name.
func ParseHex(s string) (UPixel8, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	var r, g, b uint8
	a := uint8(0xFF)
	var n int
	var err error
	switch len(s) {
	case 4:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b)
		r, g, b = r|r<<4, g|g<<4, b|b<<4
	case 5:
		n, err = fmt.Sscanf(s, "#%1x%1x%1x%1x", &r, &g, &b, &a)
		r, g, b, a = r|r<<4, g|g<<4, b|b<<4, a|a<<4
	case 7:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x", &r, &g, &b)
	case 9:
		n, err = fmt.Sscanf(s, "#%2x%2x%2x%2x", &r, &g, &b, &a)
	default:
		return 0, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}
	if err != nil {
		return 0, fmt.Errorf("could not read color %q: %w", s, err)
	} else if n < 3 {
		return 0, fmt.Errorf("insufficient color fields in %q: %d", s, n)
	}
	return PackU(r, g, b, a), nil
}
