package engine

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/klauspost/compress/zstd"

	"picproc/pixel"
)

func TestAllocate(t *testing.T) {
	e := New(2)

	tests := []struct {
		name          string
		width, height int
		wantErr       error
	}{
		{"valid", 3, 2, nil},
		{"zero width", 0, 2, ErrInvalidDimensions},
		{"zero height", 3, 0, ErrInvalidDimensions},
		{"negative", -1, 2, ErrInvalidDimensions},
		{"too wide", 1 << 32, 1, ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := e.Allocate(tt.width, tt.height)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Allocate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer e.Free(b)
			if b.Width() != tt.width || b.Height() != tt.height {
				t.Errorf("size = %dx%d, want %dx%d", b.Width(), b.Height(), tt.width, tt.height)
			}
			if len(b.Pixels()) != tt.width*tt.height {
				t.Errorf("len(Pixels()) = %d, want %d", len(b.Pixels()), tt.width*tt.height)
			}
		})
	}
}

func TestPoolReuseIsZeroed(t *testing.T) {
	e := New(1)
	b, err := e.Allocate(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i := range b.Pixels() {
		b.Pixels()[i] = 0xffffffff
	}
	e.Free(b)
	if b.Pixels() != nil {
		t.Error("freed buffer still exposes pixels")
	}

	b2, err := e.Allocate(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer e.Free(b2)
	for i, p := range b2.Pixels() {
		if p != 0 {
			t.Fatalf("reused pixel %d = %#x, want 0", i, p)
		}
	}

	s := e.Stats()
	if s.Allocated != 2 || s.Freed != 1 || s.Live() != 1 {
		t.Errorf("Stats() = %+v, want 2 allocated, 1 freed", s)
	}
}

func TestDoubleFreePanics(t *testing.T) {
	e := New(0)
	b, _ := e.Allocate(1, 1)
	e.Free(b)

	defer func() {
		if recover() == nil {
			t.Error("second Free did not panic")
		}
	}()
	e.Free(b)
}

func TestFreeNil(t *testing.T) {
	New(0).Free(nil)
}

func TestSubimage(t *testing.T) {
	e := New(0)
	src, _ := e.Allocate(3, 2)
	for i := range src.Pixels() {
		src.Pixels()[i] = uint32(i + 1)
	}

	tests := []struct {
		name                string
		x, y, width, height int
		want                []uint32
	}{
		{"identity", 0, 0, 3, 2, []uint32{1, 2, 3, 4, 5, 6}},
		{"inner", 1, 1, 2, 1, []uint32{5, 6}},
		{"negative offset pads", -1, -1, 3, 2, []uint32{0, 0, 0, 0, 1, 2}},
		{"oversize pads", 2, 0, 2, 3, []uint32{3, 0, 6, 0, 0, 0}},
		{"fully outside", 10, 10, 2, 1, []uint32{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := e.Subimage(src, tt.x, tt.y, tt.width, tt.height)
			if err != nil {
				t.Fatalf("Subimage() error = %v", err)
			}
			defer e.Free(sub)
			for i, w := range tt.want {
				if sub.Pixels()[i] != w {
					t.Fatalf("pixels = %v, want %v", sub.Pixels(), tt.want)
				}
			}
		})
	}

	if _, err := e.Subimage(src, 0, 0, 0, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("empty Subimage error = %v, want %v", err, ErrInvalidDimensions)
	}
}

func TestSamePixel(t *testing.T) {
	e := New(0)
	b, _ := e.Allocate(2, 2)
	defer e.Free(b)

	if p, ok := b.SamePixel(); !ok || p != pixel.Transparent {
		t.Errorf("SamePixel() = %v, %v, want transparent, true", p, ok)
	}
	b.Pixels()[3] = 1
	if _, ok := b.SamePixel(); ok {
		t.Error("SamePixel() = true after changing one pixel")
	}
	if got := b.PixelAt(1, 1); got != 1 {
		t.Errorf("PixelAt(1, 1) = %v, want 1", got)
	}
	if got := b.PixelAt(2, 0); got != pixel.Transparent {
		t.Errorf("PixelAt out of bounds = %v, want transparent", got)
	}
}

func TestThumbnailDimensions(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{200, 100, 50, 50, 50, 25},
		{100, 200, 50, 50, 25, 50},
		{100, 100, 64, 32, 32, 32},
		{1000, 1, 10, 10, 10, 1},
	}

	for _, tt := range tests {
		gotW, gotH := ThumbnailDimensions(tt.w, tt.h, tt.maxW, tt.maxH)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("ThumbnailDimensions(%d, %d, %d, %d) = %d, %d, want %d, %d",
				tt.w, tt.h, tt.maxW, tt.maxH, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestFromImageToRGBA(t *testing.T) {
	e := New(0)
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 128})

	b, err := e.FromImage(src)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	defer e.Free(b)

	if got := pixel.Pixel8(b.Pixels()[0]); got != pixel.Pack(255, 0, 0, 255) {
		t.Errorf("pixel 0 = %#08x", uint32(got))
	}
	if got := pixel.Pixel8(b.Pixels()[1]); got != pixel.Pack(0, 0, 128, 128) {
		t.Errorf("pixel 1 = %#08x", uint32(got))
	}

	rgba := ToRGBA(b)
	if c := rgba.RGBAAt(1, 0); c != (color.RGBA{B: 128, A: 128}) {
		t.Errorf("ToRGBA pixel 1 = %v", c)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	e := New(0)
	pixels := make([]uint32, 16*8)
	for i := range pixels {
		pixels[i] = uint32(pixel.Pack(uint8(i), uint8(i*3), 7, 255))
	}

	data, err := Compress(pixels)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	b, err := e.Decompress(16, 8, data)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	defer e.Free(b)
	for i, p := range b.Pixels() {
		if p != pixels[i] {
			t.Fatalf("pixel %d = %#x, want %#x", i, p, pixels[i])
		}
	}

	if _, err := e.Decompress(4, 4, data); err == nil {
		t.Error("Decompress with wrong size succeeded")
	}
	if _, err := e.Decompress(1, 1, []byte("not zstd")); err == nil {
		t.Error("Decompress of garbage succeeded")
	}
}

func TestDecompressStopsAtExpectedSize(t *testing.T) {
	// 1024x1024 transparent pixels compress to a few hundred bytes.
	data, err := Compress(make([]uint32, 1024*1024))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) > 64<<10 {
		t.Fatalf("test stream is %d bytes, expected a small one", len(data))
	}

	e := New(0)
	_, err = e.Decompress(2, 2, data)
	if !errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		t.Errorf("Decompress() error = %v, want %v", err, zstd.ErrDecoderSizeExceeded)
	}
	if s := e.Stats(); s.Allocated != 0 {
		t.Errorf("Decompress() allocated %d buffers for a rejected stream", s.Allocated)
	}
}
