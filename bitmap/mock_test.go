package bitmap

import (
	"picproc/canvas"
	"picproc/codec"
	"picproc/engine"
	"picproc/pixel"
)

// countingEngine wraps a real engine and counts or fails selected calls.
type countingEngine struct {
	*engine.Engine
	scales      int
	subimages   int
	blends      int
	scaleErr    error
	subimageErr error
}

func newCountingEngine() *countingEngine {
	return &countingEngine{Engine: engine.New(0)}
}

func (e *countingEngine) Scale(srcWidth, srcHeight int, src []uint32, dc *engine.DrawContext,
	width, height int, interp engine.Interpolation) (*engine.Buffer, error) {
	e.scales++
	if e.scaleErr != nil {
		return nil, e.scaleErr
	}
	return e.Engine.Scale(srcWidth, srcHeight, src, dc, width, height, interp)
}

func (e *countingEngine) Subimage(b *engine.Buffer, x, y, width, height int) (*engine.Buffer, error) {
	e.subimages++
	if e.subimageErr != nil {
		return nil, e.subimageErr
	}
	return e.Engine.Subimage(b, x, y, width, height)
}

func (e *countingEngine) BlendTo(dst, src []uint32, color pixel.UPixel8, opacity uint8) {
	e.blends++
	e.Engine.BlendTo(dst, src, color, opacity)
}

// countingCodec hands out memory sinks and counts opens and closes.
type countingCodec struct {
	*codec.Codec
	opens     int
	closes    int
	sinks     []*codec.MemSink
	openErr   error
	encodeErr error
}

func newCountingCodec() *countingCodec {
	return &countingCodec{Codec: &codec.Codec{}}
}

func (c *countingCodec) OpenFileSink(string) (codec.Sink, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.opens++
	s := codec.NewMemSink()
	c.sinks = append(c.sinks, s)
	return s, nil
}

func (c *countingCodec) CloseSink(s codec.Sink) error {
	c.closes++
	return s.Close()
}

func (c *countingCodec) Encode(f codec.Format, b *engine.Buffer, s codec.Sink) error {
	if c.encodeErr != nil {
		return c.encodeErr
	}
	return c.Codec.Encode(f, b, s)
}

// failingRenderer fails every Flatten but still answers FlatPixel.
type failingRenderer struct {
	*canvas.Renderer
	err error
}

func (r *failingRenderer) Flatten(*canvas.State, canvas.RenderFlags) (*engine.Buffer, error) {
	return nil, r.err
}

func solidPixels(n int, p pixel.Pixel8) []uint32 {
	pixels := make([]uint32, n)
	for i := range pixels {
		pixels[i] = uint32(p)
	}
	return pixels
}

func rampPixels(n int) []uint32 {
	pixels := make([]uint32, n)
	for i := range pixels {
		pixels[i] = uint32(pixel.Pack(uint8(i), uint8(i*7), uint8(i*13), 255))
	}
	return pixels
}
