package engine

import (
	"image"

	"golang.org/x/image/draw"

	"picproc/pixel"
)

// The two functions below are the only places where engine pixels
// (uint32, A<<24|R<<16|G<<8|B) and image.RGBA bytes (R, G, B, A) are
// converted into each other. Both are premultiplied, so only the byte order
// changes: 4 bytes per pixel, width*height pixels, no row padding on the
// engine side.

func loadRGBA(dst *image.RGBA, src []uint32, width, height int) {
	for y := range height {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x, p := range src[y*width : (y+1)*width] {
			o := x * 4
			row[o+0] = uint8(p >> 16)
			row[o+1] = uint8(p >> 8)
			row[o+2] = uint8(p)
			row[o+3] = uint8(p >> 24)
		}
	}
}

func storeRGBA(dst []uint32, src *image.RGBA, width, height int) {
	for y := range height {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		out := dst[y*width : (y+1)*width]
		for x := range out {
			o := x * 4
			out[x] = uint32(row[o+3])<<24 | uint32(row[o+0])<<16 | uint32(row[o+1])<<8 | uint32(row[o+2])
		}
	}
}

// storeNRGBA premultiplies straight NRGBA bytes into engine pixels.
func storeNRGBA(dst []uint32, src *image.NRGBA, width, height int) {
	for y := range height {
		row := src.Pix[y*src.Stride : y*src.Stride+width*4]
		out := dst[y*width : (y+1)*width]
		for x := range out {
			o := x * 4
			out[x] = uint32(pixel.Premultiply(pixel.PackU(row[o+0], row[o+1], row[o+2], row[o+3])))
		}
	}
}

// ToRGBA copies the buffer into a new image.RGBA.
func ToRGBA(b *Buffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	loadRGBA(img, b.pixels, b.width, b.height)
	return img
}

// FromImage allocates a buffer holding a copy of img.
func (e *Engine) FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	buf, err := e.Allocate(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	storeRGBA(buf.pixels, rgba, buf.width, buf.height)
	return buf, nil
}

// rgbaScratch resizes img to width x height, reusing its backing array when it
// is large enough. The content is undefined.
func rgbaScratch(img *image.RGBA, width, height int) *image.RGBA {
	n := width * height * 4
	if img == nil || cap(img.Pix) < n {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	img.Pix = img.Pix[:n]
	img.Stride = width * 4
	img.Rect = image.Rect(0, 0, width, height)
	return img
}
