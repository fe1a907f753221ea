// Package bitmap provides Image, an in-memory bitmap that owns one pixel
// buffer obtained from a pixel engine.
//
// An Image is created by one of the constructors, used, and released with
// Close:
//
//	img, err := bitmap.New(640, 480)
//	if err != nil {
//		return err
//	}
//	defer img.Close()
//
// Pixels are premultiplied pixel.Pixel8 values stored row-major with no
// padding. Images are not safe for concurrent use.
package bitmap

import (
	"fmt"
	"math"
	"os"

	"picproc/canvas"
	"picproc/engine"
	"picproc/pixel"
)

// Image owns a width*height pixel buffer. Crops, scales and thumbnails are
// new images with their own buffers.
type Image struct {
	buf *engine.Buffer
	options
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidDimensions
	}
	if width > math.MaxInt32 || height > math.MaxInt32 || width > math.MaxInt/height {
		return ErrDimensionOverflow
	}
	return nil
}

func (o options) wrap(buf *engine.Buffer) *Image {
	return &Image{buf: buf, options: o}
}

// New returns a transparent width x height image.
func New(width, height int, opts ...Option) (*Image, error) {
	return newImage(newOptions(opts), width, height)
}

func newImage(o options, width, height int) (*Image, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	buf, err := o.engine.Allocate(width, height)
	if err != nil || buf == nil {
		return nil, engineError("allocate", err)
	}
	return o.wrap(buf), nil
}

// NewFromPixels returns an image holding a copy of the first width*height
// elements of pixels. Extra trailing pixels are ignored.
func NewFromPixels(width, height int, pixels []uint32, opts ...Option) (*Image, error) {
	return newFromPixels(newOptions(opts), width, height, pixels)
}

func newFromPixels(o options, width, height int, pixels []uint32) (*Image, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(pixels) < width*height {
		return nil, ErrInsufficientPixelData
	}
	img, err := newImage(o, width, height)
	if err != nil {
		return nil, err
	}
	copy(img.buf.Pixels(), pixels[:width*height])
	return img, nil
}

// NewFromCanvasState flattens cs with canvas.FlatImageRenderFlags.
func NewFromCanvasState(cs *canvas.State, opts ...Option) (*Image, error) {
	o := newOptions(opts)
	buf, err := o.renderer.Flatten(cs, canvas.FlatImageRenderFlags)
	if err != nil || buf == nil {
		return nil, engineError("flatten", err)
	}
	return o.wrap(buf), nil
}

// NewFromCompressed restores a width x height image from data produced by
// DumpCompressed.
func NewFromCompressed(width, height int, data []byte, opts ...Option) (*Image, error) {
	return newFromStream(newOptions(opts), width, height, data, "decompress", PixelEngine.Decompress)
}

// NewFromDeflate restores a width x height image from a length-prefixed zlib
// stream of big-endian A, R, G, B pixels, as written by DumpDeflate.
func NewFromDeflate(width, height int, data []byte, opts ...Option) (*Image, error) {
	return newFromStream(newOptions(opts), width, height, data, "inflate", PixelEngine.DecompressDeflate)
}

// NewFromAlphaMaskDeflate builds a black image whose alpha comes from a
// length-prefixed zlib stream of one byte per pixel.
func NewFromAlphaMaskDeflate(width, height int, data []byte, opts ...Option) (*Image, error) {
	return newFromStream(newOptions(opts), width, height, data, "inflate alpha mask", PixelEngine.DecompressAlphaDeflate)
}

// NewFromAlphaMaskZstd builds a black image whose alpha comes from a zstd
// stream of delta coded alpha bytes.
func NewFromAlphaMaskZstd(width, height int, data []byte, opts ...Option) (*Image, error) {
	return newFromStream(newOptions(opts), width, height, data, "decompress alpha mask", PixelEngine.DecompressAlphaZstd)
}

func newFromStream(o options, width, height int, data []byte, op string,
	decode func(PixelEngine, int, int, []byte) (*engine.Buffer, error)) (*Image, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	buf, err := decode(o.engine, width, height, data)
	if err != nil || buf == nil {
		return nil, engineError(op, err)
	}
	return o.wrap(buf), nil
}

// Load decodes the image file at path. Every format registered with the
// codec engine is accepted.
func Load(path string, opts ...Option) (*Image, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bitmap: could not open %q: %w", path, err)
	}
	defer f.Close()

	o := newOptions(opts)
	buf, format, err := o.codec.Decode(f, o.engine)
	if err != nil || buf == nil {
		return nil, engineError("decode", err)
	}
	engine.Logger().Debug("loaded image", "file", path, "format", format.String(),
		"width", buf.Width(), "height", buf.Height())
	return o.wrap(buf), nil
}

// Close releases the pixel buffer. Closing twice is a no-op.
func (img *Image) Close() error {
	if img == nil || img.buf == nil {
		return nil
	}
	img.engine.Free(img.buf)
	img.buf = nil
	return nil
}

func (img *Image) live() error {
	if img == nil || img.buf == nil {
		return ErrClosed
	}
	return nil
}

// Width returns the width in pixels, or 0 once closed.
func (img *Image) Width() int {
	if img.live() != nil {
		return 0
	}
	return img.buf.Width()
}

// Height returns the height in pixels, or 0 once closed.
func (img *Image) Height() int {
	if img.live() != nil {
		return 0
	}
	return img.buf.Height()
}

// Pixels returns the pixel buffer. The slice is borrowed: it is only valid
// until the image is closed and must not be read while BlendWith or
// AddBackground runs.
func (img *Image) Pixels() []uint32 {
	if img.live() != nil {
		return nil
	}
	return img.buf.Pixels()
}

// PixelAt returns the pixel at (x, y), or transparent outside the image.
func (img *Image) PixelAt(x, y int) pixel.Pixel8 {
	if img.live() != nil {
		return pixel.Transparent
	}
	return img.buf.PixelAt(x, y)
}

// SamePixel reports whether every pixel has the same value, and which.
func (img *Image) SamePixel() (pixel.Pixel8, bool) {
	if img.live() != nil {
		return pixel.Transparent, false
	}
	return img.buf.SamePixel()
}

// Cropped returns the width x height region at (x, y) as a new image. The
// region may start at negative offsets and extend past the image; those
// parts are transparent.
func (img *Image) Cropped(x, y, width, height int) (*Image, error) {
	if err := img.live(); err != nil {
		return nil, err
	}
	sub, err := img.engine.Subimage(img.buf, x, y, width, height)
	if err != nil || sub == nil {
		return nil, engineError("subimage", err)
	}
	return img.wrap(sub), nil
}

// BlendWith composites src onto img in place, tinted by color and scaled by
// opacity. Both images must have the same size.
func (img *Image) BlendWith(src *Image, color pixel.UPixel8, opacity uint8) error {
	if err := img.live(); err != nil {
		return err
	}
	if err := src.live(); err != nil {
		return err
	}
	if img.buf.Width() != src.buf.Width() || img.buf.Height() != src.buf.Height() {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrMismatchedDimensions,
			img.buf.Width(), img.buf.Height(), src.buf.Width(), src.buf.Height())
	}
	img.engine.BlendTo(img.buf.Pixels(), src.buf.Pixels(), color, opacity)
	return nil
}

// AddBackground draws color behind every pixel in place.
func (img *Image) AddBackground(color pixel.UPixel8) error {
	if err := img.live(); err != nil {
		return err
	}
	img.engine.BlendBackground(img.buf.Pixels(), color)
	return nil
}
