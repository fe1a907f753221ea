// Package codec encodes engine buffers into image container formats and
// decodes image files back into engine buffers.
package codec

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"picproc/engine"
)

// ErrUnsupportedFormat is returned for formats Encode cannot write.
var ErrUnsupportedFormat = errors.New("codec: unsupported format")

// DefaultJPEGQuality is used when Codec.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// Codec holds encoder settings. The zero value is usable.
type Codec struct {
	// JPEGQuality is 1-100; zero means DefaultJPEGQuality.
	JPEGQuality int
	// PNGCompression defaults to png.DefaultCompression.
	PNGCompression png.CompressionLevel
}

var defaultCodec = &Codec{}

// Default returns the process-wide codec.
func Default() *Codec {
	return defaultCodec
}

// OpenFileSink opens a file sink at path.
func (c *Codec) OpenFileSink(path string) (Sink, error) {
	s, err := OpenFileSink(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CloseSink releases a sink.
func (c *Codec) CloseSink(s Sink) error {
	return s.Close()
}

// Encode writes b to s in the given format. The sink is not closed.
func (c *Codec) Encode(f Format, b *engine.Buffer, s Sink) error {
	if !f.CanEncode() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	rgba := engine.ToRGBA(b)
	var err error
	switch f {
	case FormatPNG:
		enc := png.Encoder{
			CompressionLevel: c.PNGCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(s, rgba)
	case FormatJPEG:
		quality := c.JPEGQuality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(s, rgba, &jpeg.Options{Quality: min(quality, 100)})
	case FormatQOI:
		err = encodeQOI(s, toNRGBA(rgba))
	case FormatWEBP:
		err = nativewebp.Encode(s, toNRGBA(rgba), nil)
	case FormatBMP:
		err = bmp.Encode(s, rgba)
	case FormatTIFF:
		err = tiff.Encode(s, rgba, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		return fmt.Errorf("codec: encode %s: %w", f, err)
	}
	return nil
}

// Importer copies decoded images into engine buffers. *engine.Engine
// implements it.
type Importer interface {
	FromImage(img image.Image) (*engine.Buffer, error)
}

// Decode reads an image in any registered format into a new buffer
// obtained from e.
func (c *Codec) Decode(r io.Reader, e Importer) (*engine.Buffer, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("codec: decode: %w", err)
	}
	buf, err := e.FromImage(img)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("codec: decode %s: %w", name, err)
	}
	return buf, ParseFormat(name), nil
}

// toNRGBA converts premultiplied pixels for encoders that expect straight
// alpha.
func toNRGBA(src *image.RGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Src)
	return dst
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
