package engine

import "picproc/pixel"

// Subimage copies the width x height region at (x, y) into a new buffer.
// Offsets may be negative and the region may extend past the source; pixels
// outside the source stay transparent.
func (e *Engine) Subimage(b *Buffer, x, y, width, height int) (*Buffer, error) {
	sub, err := e.Allocate(width, height)
	if err != nil {
		return nil, err
	}

	dstX, dstY := max(-x, 0), max(-y, 0)
	srcX, srcY := max(x, 0), max(y, 0)
	copyWidth := min(width-dstX, b.width-srcX)
	copyHeight := min(height-dstY, b.height-srcY)
	if copyWidth <= 0 || copyHeight <= 0 {
		return sub, nil
	}

	for row := range copyHeight {
		d := (row+dstY)*width + dstX
		s := (row+srcY)*b.width + srcX
		copy(sub.pixels[d:d+copyWidth], b.pixels[s:s+copyWidth])
	}
	return sub, nil
}

// BlendTo composites src onto dst, see pixel.BlendTo. Both slices must hold at
// least len(dst) pixels; nothing else is checked.
func (e *Engine) BlendTo(dst, src []uint32, color pixel.UPixel8, opacity uint8) {
	pixel.BlendTo(dst, src, color, opacity)
}

// BlendBackground draws color behind every pixel.
func (e *Engine) BlendBackground(pixels []uint32, color pixel.UPixel8) {
	pixel.BlendBackground(pixels, color)
}

// PixelAt returns the pixel at (x, y), or transparent when out of bounds.
func (b *Buffer) PixelAt(x, y int) pixel.Pixel8 {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return pixel.Transparent
	}
	return pixel.Pixel8(b.pixels[y*b.width+x])
}

// SamePixel reports whether every pixel of b has the same value, and which.
func (b *Buffer) SamePixel() (pixel.Pixel8, bool) {
	if len(b.pixels) == 0 {
		return pixel.Transparent, false
	}
	first := b.pixels[0]
	for _, p := range b.pixels[1:] {
		if p != first {
			return pixel.Transparent, false
		}
	}
	return pixel.Pixel8(first), true
}

// ThumbnailDimensions fits width x height into maxWidth x maxHeight, keeping
// the aspect ratio with integer arithmetic. Results are at least 1.
func ThumbnailDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	w := maxHeight * width / height
	if w <= maxWidth {
		return max(w, 1), max(maxHeight, 1)
	}
	return max(maxWidth, 1), max(maxWidth*height/width, 1)
}
