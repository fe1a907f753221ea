package compose

import (
	"fmt"
	"strconv"
	"strings"

	"picproc/pixel"
)

type layerSpec struct {
	path    string
	opacity uint8
	mode    pixel.Mode
}

// parseLayerSpec reads PATH[@OPACITY[,MODE]]. The last '@' splits the path
// from the options so paths may contain '@'.
func parseLayerSpec(s string) (layerSpec, error) {
	spec := layerSpec{path: s, opacity: 255, mode: pixel.ModeNormal}

	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return spec, nil
	}
	spec.path = s[:i]
	if spec.path == "" {
		return layerSpec{}, fmt.Errorf("layer %q has no path", s)
	}

	opacity, mode, hasMode := strings.Cut(s[i+1:], ",")
	var err error
	if spec.opacity, err = parseOpacity(opacity); err != nil {
		return layerSpec{}, fmt.Errorf("layer %q: %w", s, err)
	}
	if hasMode {
		var ok bool
		if spec.mode, ok = pixel.ParseMode(mode); !ok {
			return layerSpec{}, fmt.Errorf("layer %q: unknown blend mode %q", s, mode)
		}
	}
	return spec, nil
}

func parseOpacity(s string) (uint8, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil || v < 0 || v > 100 {
			return 0, fmt.Errorf("invalid opacity %q", s)
		}
		return uint8(v*255/100 + 0.5), nil
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid opacity %q", s)
	}
	return uint8(v), nil
}
