// Package canvas holds a layered canvas and renders it to a single flat
// buffer.
package canvas

import (
	"errors"
	"fmt"

	"picproc/engine"
	"picproc/pixel"
)

var (
	// ErrEmptyCanvas is returned when the canvas has no pixels.
	ErrEmptyCanvas = errors.New("canvas: empty canvas")

	// ErrLayerSize is returned when a layer's pixel count differs from the
	// canvas size.
	ErrLayerSize = errors.New("canvas: layer size mismatch")
)

// RenderFlags select what Flatten includes.
type RenderFlags uint8

const (
	// IncludeBackground fills the result with the canvas background first.
	IncludeBackground RenderFlags = 1 << iota
	// IncludeHidden renders hidden layers as if they were visible.
	IncludeHidden
	// IncludeSublayers renders group layers. Without it groups are skipped.
	IncludeSublayers
)

// FlatImageRenderFlags is what a flattened export of the canvas uses.
const FlatImageRenderFlags = IncludeBackground | IncludeSublayers

// Layer is one canvas layer. A layer with non-nil Children is a group: its own
// pixels are ignored and its children are composited on their own before the
// result is drawn with the group's mode and opacity.
type Layer struct {
	Title    string
	Pixels   []uint32 // premultiplied, Width*Height of the canvas
	Opacity  uint8
	Hidden   bool
	Mode     pixel.Mode
	Children []Layer
}

// IsGroup reports whether l is a group layer.
func (l *Layer) IsGroup() bool {
	return l.Children != nil
}

// State is a canvas: its size, background and layers, bottom first.
type State struct {
	Width      int
	Height     int
	Background pixel.UPixel8
	Layers     []Layer
}

// Renderer flattens canvas states into engine buffers.
type Renderer struct {
	engine *engine.Engine
}

// NewRenderer returns a renderer allocating from e.
func NewRenderer(e *engine.Engine) *Renderer {
	return &Renderer{engine: e}
}

var defaultRenderer = NewRenderer(engine.Default())

// Default returns the renderer backed by the default engine.
func Default() *Renderer {
	return defaultRenderer
}

// Flatten composites the canvas into a new buffer owned by the caller.
func (r *Renderer) Flatten(cs *State, flags RenderFlags) (*engine.Buffer, error) {
	if cs == nil || cs.Width <= 0 || cs.Height <= 0 {
		return nil, ErrEmptyCanvas
	}
	dst, err := r.engine.Allocate(cs.Width, cs.Height)
	if err != nil {
		return nil, fmt.Errorf("canvas: allocate %dx%d: %w", cs.Width, cs.Height, err)
	}

	if flags&IncludeBackground != 0 {
		r.engine.BlendBackground(dst.Pixels(), cs.Background)
	}

	c := compositor{
		flags: flags,
		size:  cs.Width * cs.Height,
		count: cs.Width * cs.Height,
		scratch: func() ([]uint32, func(), error) {
			b, err := r.engine.Allocate(cs.Width, cs.Height)
			if err != nil {
				return nil, nil, err
			}
			return b.Pixels(), func() { r.engine.Free(b) }, nil
		},
	}
	if err := c.draw(dst.Pixels(), cs.Layers); err != nil {
		r.engine.Free(dst)
		return nil, err
	}

	engine.Logger().Debug("flattened canvas",
		"width", cs.Width, "height", cs.Height, "layers", len(cs.Layers))
	return dst, nil
}

// FlatPixel returns the flattened value of a single pixel using
// FlatImageRenderFlags, without rendering the whole canvas. It returns
// transparent for coordinates outside the canvas or a malformed canvas.
func (r *Renderer) FlatPixel(cs *State, x, y int) pixel.Pixel8 {
	if cs == nil || x < 0 || y < 0 || x >= cs.Width || y >= cs.Height {
		return pixel.Transparent
	}
	dst := []uint32{0}
	pixel.BlendBackground(dst, cs.Background)

	c := compositor{
		flags:  FlatImageRenderFlags,
		size:   cs.Width * cs.Height,
		offset: y*cs.Width + x,
		count:  1,
		scratch: func() ([]uint32, func(), error) {
			return []uint32{0}, func() {}, nil
		},
	}
	if err := c.draw(dst, cs.Layers); err != nil {
		return pixel.Transparent
	}
	return pixel.Pixel8(dst[0])
}

// compositor draws a window of count pixels starting at offset from every
// layer onto dst.
type compositor struct {
	flags   RenderFlags
	size    int
	offset  int
	count   int
	scratch func() ([]uint32, func(), error)
}

func (c *compositor) draw(dst []uint32, layers []Layer) error {
	for i := range layers {
		l := &layers[i]
		if l.Hidden && c.flags&IncludeHidden == 0 {
			continue
		}
		if l.Opacity == 0 {
			continue
		}

		if l.IsGroup() {
			if c.flags&IncludeSublayers == 0 {
				continue
			}
			if err := c.drawGroup(dst, l); err != nil {
				return err
			}
			continue
		}

		if len(l.Pixels) != c.size {
			return fmt.Errorf("%w: layer %q has %d pixels, want %d",
				ErrLayerSize, l.Title, len(l.Pixels), c.size)
		}
		pixel.Composite(dst, l.Pixels[c.offset:c.offset+c.count], l.Mode, l.Opacity)
	}
	return nil
}

func (c *compositor) drawGroup(dst []uint32, l *Layer) error {
	tmp, release, err := c.scratch()
	if err != nil {
		return fmt.Errorf("canvas: group %q: %w", l.Title, err)
	}
	defer release()

	if err := c.draw(tmp, l.Children); err != nil {
		return err
	}
	pixel.Composite(dst, tmp, l.Mode, l.Opacity)
	return nil
}
