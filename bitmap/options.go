package bitmap

import (
	"image"
	"io"

	"picproc/canvas"
	"picproc/codec"
	"picproc/engine"
	"picproc/pixel"
)

// PixelEngine allocates, transforms and releases pixel buffers.
// *engine.Engine implements it.
type PixelEngine interface {
	Allocate(width, height int) (*engine.Buffer, error)
	Free(b *engine.Buffer)
	Subimage(b *engine.Buffer, x, y, width, height int) (*engine.Buffer, error)
	Scale(srcWidth, srcHeight int, src []uint32, dc *engine.DrawContext,
		width, height int, interp engine.Interpolation) (*engine.Buffer, error)
	BlendTo(dst, src []uint32, color pixel.UPixel8, opacity uint8)
	BlendBackground(pixels []uint32, color pixel.UPixel8)
	FromImage(img image.Image) (*engine.Buffer, error)
	Decompress(width, height int, data []byte) (*engine.Buffer, error)
	DecompressDeflate(width, height int, data []byte) (*engine.Buffer, error)
	DecompressAlphaDeflate(width, height int, data []byte) (*engine.Buffer, error)
	DecompressAlphaZstd(width, height int, data []byte) (*engine.Buffer, error)
}

// CodecEngine opens output sinks and encodes buffers into them.
// *codec.Codec implements it.
type CodecEngine interface {
	OpenFileSink(path string) (codec.Sink, error)
	CloseSink(s codec.Sink) error
	Encode(f codec.Format, b *engine.Buffer, s codec.Sink) error
	Decode(r io.Reader, e codec.Importer) (*engine.Buffer, codec.Format, error)
}

// CanvasRenderer flattens layered canvases. *canvas.Renderer implements it.
// Buffers it returns are released through the image's PixelEngine, so both
// should share the same allocator.
type CanvasRenderer interface {
	Flatten(cs *canvas.State, flags canvas.RenderFlags) (*engine.Buffer, error)
	FlatPixel(cs *canvas.State, x, y int) pixel.Pixel8
}

// Option configures the collaborators of a new image. Derived images (crops,
// scales, thumbnails) inherit the collaborators of their source.
type Option func(*options)

type options struct {
	engine   PixelEngine
	codec    CodecEngine
	renderer CanvasRenderer
}

func defaultOptions() options {
	return options{
		engine:   engine.Default(),
		codec:    codec.Default(),
		renderer: canvas.Default(),
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithEngine sets the pixel engine.
func WithEngine(e PixelEngine) Option {
	return func(o *options) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithCodec sets the codec engine.
func WithCodec(c CodecEngine) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithRenderer sets the canvas renderer.
func WithRenderer(r CanvasRenderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}
