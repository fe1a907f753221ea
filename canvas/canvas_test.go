package canvas

import (
	"errors"
	"testing"

	"picproc/engine"
	"picproc/pixel"
)

func fill(n int, p pixel.Pixel8) []uint32 {
	pixels := make([]uint32, n)
	for i := range pixels {
		pixels[i] = uint32(p)
	}
	return pixels
}

var (
	red   = pixel.Pack(255, 0, 0, 255)
	blue  = pixel.Pack(0, 0, 255, 255)
	white = pixel.PackU(255, 255, 255, 255)
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		state State
		flags RenderFlags
		want  pixel.Pixel8
	}{
		{
			name:  "background only",
			state: State{Width: 2, Height: 2, Background: white},
			flags: FlatImageRenderFlags,
			want:  pixel.Pack(255, 255, 255, 255),
		},
		{
			name:  "background excluded",
			state: State{Width: 2, Height: 2, Background: white},
			flags: IncludeSublayers,
			want:  pixel.Transparent,
		},
		{
			name: "top layer wins",
			state: State{Width: 2, Height: 2, Layers: []Layer{
				{Title: "bottom", Pixels: fill(4, red), Opacity: 255},
				{Title: "top", Pixels: fill(4, blue), Opacity: 255},
			}},
			flags: FlatImageRenderFlags,
			want:  blue,
		},
		{
			name: "hidden skipped",
			state: State{Width: 2, Height: 2, Layers: []Layer{
				{Title: "bottom", Pixels: fill(4, red), Opacity: 255},
				{Title: "top", Pixels: fill(4, blue), Opacity: 255, Hidden: true},
			}},
			flags: FlatImageRenderFlags,
			want:  red,
		},
		{
			name: "hidden included",
			state: State{Width: 2, Height: 2, Layers: []Layer{
				{Title: "bottom", Pixels: fill(4, red), Opacity: 255},
				{Title: "top", Pixels: fill(4, blue), Opacity: 255, Hidden: true},
			}},
			flags: FlatImageRenderFlags | IncludeHidden,
			want:  blue,
		},
		{
			name: "half opacity",
			state: State{Width: 1, Height: 1, Layers: []Layer{
				{Title: "l", Pixels: fill(1, red), Opacity: 128},
			}},
			flags: FlatImageRenderFlags,
			want:  pixel.Pack(128, 0, 0, 128),
		},
		{
			name: "group composited",
			state: State{Width: 1, Height: 1, Layers: []Layer{
				{Title: "g", Opacity: 255, Children: []Layer{
					{Title: "child", Pixels: fill(1, blue), Opacity: 255},
				}},
			}},
			flags: FlatImageRenderFlags,
			want:  blue,
		},
		{
			name: "group skipped without sublayers",
			state: State{Width: 1, Height: 1, Layers: []Layer{
				{Title: "g", Opacity: 255, Children: []Layer{
					{Title: "child", Pixels: fill(1, blue), Opacity: 255},
				}},
			}},
			flags: IncludeBackground,
			want:  pixel.Transparent,
		},
	}

	r := NewRenderer(engine.New(0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := r.Flatten(&tt.state, tt.flags)
			if err != nil {
				t.Fatalf("Flatten() error = %v", err)
			}
			defer r.engine.Free(b)
			for i, p := range b.Pixels() {
				if pixel.Pixel8(p) != tt.want {
					t.Fatalf("pixel %d = %#08x, want %#08x", i, p, uint32(tt.want))
				}
			}
		})
	}
}

func TestFlattenErrors(t *testing.T) {
	e := engine.New(0)
	r := NewRenderer(e)

	if _, err := r.Flatten(&State{}, FlatImageRenderFlags); !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("empty canvas error = %v, want %v", err, ErrEmptyCanvas)
	}
	if _, err := r.Flatten(nil, FlatImageRenderFlags); !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("nil canvas error = %v, want %v", err, ErrEmptyCanvas)
	}

	cs := &State{Width: 2, Height: 2, Layers: []Layer{
		{Title: "g", Opacity: 255, Children: []Layer{
			{Title: "short", Pixels: fill(3, red), Opacity: 255},
		}},
	}}
	if _, err := r.Flatten(cs, FlatImageRenderFlags); !errors.Is(err, ErrLayerSize) {
		t.Errorf("short layer error = %v, want %v", err, ErrLayerSize)
	}
	if s := e.Stats(); s.Live() != 0 {
		t.Errorf("failed flatten leaked %d buffers", s.Live())
	}
}

func TestFlatPixelMatchesFlatten(t *testing.T) {
	r := NewRenderer(engine.New(0))
	bottom := make([]uint32, 6)
	top := make([]uint32, 6)
	for i := range bottom {
		bottom[i] = uint32(pixel.Pack(uint8(i*40), 10, 20, 255))
		top[i] = uint32(pixel.Pack(0, uint8(i*30), 0, uint8(i*40)))
	}
	cs := &State{Width: 3, Height: 2, Background: white, Layers: []Layer{
		{Title: "bottom", Pixels: bottom, Opacity: 200, Mode: pixel.ModeMultiply},
		{Title: "g", Opacity: 255, Children: []Layer{
			{Title: "top", Pixels: top, Opacity: 255},
		}},
	}}

	b, err := r.Flatten(cs, FlatImageRenderFlags)
	if err != nil {
		t.Fatal(err)
	}
	defer r.engine.Free(b)

	for y := range 2 {
		for x := range 3 {
			if got, want := r.FlatPixel(cs, x, y), b.PixelAt(x, y); got != want {
				t.Errorf("FlatPixel(%d, %d) = %#08x, want %#08x", x, y, uint32(got), uint32(want))
			}
		}
	}
	if got := r.FlatPixel(cs, 3, 0); got != pixel.Transparent {
		t.Errorf("FlatPixel out of bounds = %#08x", uint32(got))
	}
}
