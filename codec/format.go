package codec

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/image/riff"
)

// Format identifies an image container format.
//
// BMP does not round-trip alpha: translucent pixels are written with their
// colour and read back as opaque. JPEG drops alpha and is lossy.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatWEBP
	FormatQOI
	FormatBMP // alpha is lost on reload
	FormatTIFF
	FormatGIF // decode only
)

var formatNames = map[Format]string{
	FormatPNG:  "png",
	FormatJPEG: "jpeg",
	FormatWEBP: "webp",
	FormatQOI:  "qoi",
	FormatBMP:  "bmp",
	FormatTIFF: "tiff",
	FormatGIF:  "gif",
}

// String returns the name image.Decode uses for the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Extension returns the usual file extension, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	case FormatUnknown:
		return ""
	default:
		return "." + f.String()
	}
}

// CanEncode reports whether Encode supports the format.
func (f Format) CanEncode() bool {
	return f >= FormatPNG && f <= FormatTIFF
}

// ParseFormat looks a format up by name. "jpg" and "tif" are accepted too.
func ParseFormat(s string) Format {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	switch s {
	case "jpg":
		return FormatJPEG
	case "tif":
		return FormatTIFF
	}
	for f, name := range formatNames {
		if name == s {
			return f
		}
	}
	return FormatUnknown
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) Format {
	return ParseFormat(filepath.Ext(path))
}

var (
	pngSig  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	qoiSig  = []byte("qoif")
	gifSig  = []byte("GIF8")
	bmpSig  = []byte("BM")
	tiffLE  = []byte{'I', 'I', 0x2a, 0x00}
	tiffBE  = []byte{'M', 'M', 0x00, 0x2a}
	webpFCC = riff.FourCC{'W', 'E', 'B', 'P'}
)

// Guess identifies the format of encoded image data from its first bytes.
func Guess(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngSig):
		return FormatPNG
	case guessJPEG(data):
		return FormatJPEG
	case guessWEBP(data):
		return FormatWEBP
	case bytes.HasPrefix(data, qoiSig):
		return FormatQOI
	case bytes.HasPrefix(data, gifSig):
		return FormatGIF
	case bytes.HasPrefix(data, tiffLE), bytes.HasPrefix(data, tiffBE):
		return FormatTIFF
	case bytes.HasPrefix(data, bmpSig):
		return FormatBMP
	default:
		return FormatUnknown
	}
}

func guessJPEG(data []byte) bool {
	return len(data) >= 4 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff &&
		((data[3] >= 0xe0 && data[3] <= 0xef) || data[3] == 0xdb)
}

func guessWEBP(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	formType, _, err := riff.NewReader(bytes.NewReader(data[:12]))
	return err == nil && formType == webpFCC
}
