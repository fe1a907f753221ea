package engine

import (
	"errors"
	"testing"

	"picproc/pixel"
)

func solid(n int, p pixel.Pixel8) []uint32 {
	pixels := make([]uint32, n)
	for i := range pixels {
		pixels[i] = uint32(p)
	}
	return pixels
}

func TestScaleDimensions(t *testing.T) {
	e := New(0)
	dc := NewDrawContext()
	src := solid(8*4, pixel.Pack(10, 20, 30, 255))

	for i := range interpCount {
		t.Run(i.String(), func(t *testing.T) {
			b, err := e.Scale(8, 4, src, dc, 5, 3, i)
			if err != nil {
				t.Fatalf("Scale() error = %v", err)
			}
			defer e.Free(b)
			if b.Width() != 5 || b.Height() != 3 {
				t.Errorf("size = %dx%d, want 5x3", b.Width(), b.Height())
			}
		})
	}
}

func TestScaleNearestKeepsColors(t *testing.T) {
	e := New(0)
	dc := NewDrawContext()
	want := pixel.Pack(200, 100, 50, 255)

	b, err := e.Scale(4, 4, solid(16, want), dc, 2, 2, InterpNearest)
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	defer e.Free(b)
	for i, p := range b.Pixels() {
		if pixel.Pixel8(p) != want {
			t.Fatalf("pixel %d = %#08x, want %#08x", i, p, uint32(want))
		}
	}
}

func TestScaleErrors(t *testing.T) {
	e := New(0)
	dc := NewDrawContext()
	src := solid(4, 0)

	tests := []struct {
		name    string
		dc      *DrawContext
		sw, sh  int
		w, h    int
		wantErr error
	}{
		{"no draw context", nil, 2, 2, 1, 1, ErrNoDrawContext},
		{"zero target", dc, 2, 2, 0, 1, ErrZeroScale},
		{"empty source", dc, 0, 2, 1, 1, ErrInvalidDimensions},
		{"short source", dc, 4, 4, 1, 1, ErrDataTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Scale(tt.sw, tt.sh, src, tt.dc, tt.w, tt.h, InterpBilinear)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Scale() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if s := e.Stats(); s.Live() != 0 {
		t.Errorf("failed scales leaked %d buffers", s.Live())
	}
}

func TestScaleUnknownInterpolationFallsBack(t *testing.T) {
	e := New(0)
	b, err := e.Scale(2, 2, solid(4, 0), NewDrawContext(), 4, 4, Interpolation(99))
	if err != nil {
		t.Fatalf("Scale() error = %v", err)
	}
	e.Free(b)
}

func TestDrawContextReusesScaler(t *testing.T) {
	e := New(0)
	dc := NewDrawContext()
	src := solid(16, 0)

	for range 2 {
		b, err := e.Scale(4, 4, src, dc, 2, 2, InterpBicubic)
		if err != nil {
			t.Fatal(err)
		}
		e.Free(b)
	}
	first := dc.scaler

	b, err := e.Scale(4, 4, src, dc, 2, 2, InterpBicubic)
	if err != nil {
		t.Fatal(err)
	}
	e.Free(b)
	if dc.scaler != first {
		t.Error("scaler rebuilt for identical dimensions")
	}

	b, err = e.Scale(4, 4, src, dc, 3, 3, InterpBicubic)
	if err != nil {
		t.Fatal(err)
	}
	e.Free(b)
	if dc.key.dstW != 3 {
		t.Errorf("scaler key not updated: %+v", dc.key)
	}
}

func TestParseInterpolation(t *testing.T) {
	for _, name := range InterpolationNames() {
		i, err := ParseInterpolation(name)
		if err != nil || i.String() != name {
			t.Errorf("ParseInterpolation(%q) = %v, %v", name, i, err)
		}
	}
	if _, err := ParseInterpolation("sinc"); err == nil {
		t.Error("ParseInterpolation(sinc) succeeded")
	}
}
