package bitmap

import (
	"math"

	"picproc/canvas"
	"picproc/engine"
)

// AspectTolerance is how close the horizontal and vertical scale ratios must
// be for the target box to be treated as having the source's aspect ratio.
const AspectTolerance = 0.01

// FitDimensions returns the size of width x height scaled to fit inside a
// boxWidth x boxHeight box with the aspect ratio kept. The axis with the
// smaller ratio is bound to the box; the other one is truncated toward zero,
// so it can come out as 0 for extreme aspect ratios.
func FitDimensions(width, height, boxWidth, boxHeight int) (int, int) {
	xratio := float64(boxWidth) / float64(width)
	yratio := float64(boxHeight) / float64(height)
	switch {
	case math.Abs(xratio-yratio) < AspectTolerance:
		return boxWidth, boxHeight
	case xratio <= yratio:
		return boxWidth, int(float64(height) * xratio)
	default:
		return int(float64(width) * yratio), boxHeight
	}
}

// NewFromPixelsScaled resamples width x height pixels to fit inside a
// scaleWidth x scaleHeight box, keeping the aspect ratio. With expand set
// the result is centered on a transparent image of exactly the box size.
// Sources that already have the box size are copied without resampling.
func NewFromPixelsScaled(width, height int, pixels []uint32,
	scaleWidth, scaleHeight int, expand bool, interp engine.Interpolation,
	dc *engine.DrawContext, opts ...Option) (*Image, error) {
	return newFromPixelsScaled(newOptions(opts), width, height, pixels,
		scaleWidth, scaleHeight, expand, interp, dc)
}

func newFromPixelsScaled(o options, width, height int, pixels []uint32,
	scaleWidth, scaleHeight int, expand bool, interp engine.Interpolation,
	dc *engine.DrawContext) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptySource
	}
	if scaleWidth <= 0 || scaleHeight <= 0 {
		return nil, ErrEmptyTarget
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if err := checkDimensions(scaleWidth, scaleHeight); err != nil {
		return nil, err
	}
	if len(pixels) < width*height {
		return nil, ErrInsufficientPixelData
	}

	if width == scaleWidth && height == scaleHeight {
		return newFromPixels(o, width, height, pixels)
	}

	targetWidth, targetHeight := FitDimensions(width, height, scaleWidth, scaleHeight)
	engine.Logger().Debug("scaling to fit",
		"width", width, "height", height,
		"box_width", scaleWidth, "box_height", scaleHeight,
		"target_width", targetWidth, "target_height", targetHeight,
		"expand", expand)

	scaled, err := o.engine.Scale(width, height, pixels, dc, targetWidth, targetHeight, interp)
	if err != nil || scaled == nil {
		return nil, engineError("scale", err)
	}
	if !expand || (targetWidth == scaleWidth && targetHeight == scaleHeight) {
		return o.wrap(scaled), nil
	}

	defer o.engine.Free(scaled)
	x := -(scaleWidth - targetWidth) / 2
	y := -(scaleHeight - targetHeight) / 2
	expanded, err := o.engine.Subimage(scaled, x, y, scaleWidth, scaleHeight)
	if err != nil || expanded == nil {
		return nil, engineError("expand", err)
	}
	return o.wrap(expanded), nil
}

// Scaled fits the image into a scaleWidth x scaleHeight box, see
// NewFromPixelsScaled.
func (img *Image) Scaled(scaleWidth, scaleHeight int, expand bool,
	interp engine.Interpolation, dc *engine.DrawContext) (*Image, error) {
	if err := img.live(); err != nil {
		return nil, err
	}
	return newFromPixelsScaled(img.options, img.buf.Width(), img.buf.Height(),
		img.buf.Pixels(), scaleWidth, scaleHeight, expand, interp, dc)
}

// Thumbnail scales the image down to fit maxWidth x maxHeight. It returns a
// nil image and no error when the image already fits.
func (img *Image) Thumbnail(dc *engine.DrawContext, maxWidth, maxHeight int,
	interp engine.Interpolation) (*Image, error) {
	if err := img.live(); err != nil {
		return nil, err
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, ErrEmptyTarget
	}
	width, height := img.buf.Width(), img.buf.Height()
	if width <= maxWidth && height <= maxHeight {
		return nil, nil
	}

	tw, th := engine.ThumbnailDimensions(width, height, maxWidth, maxHeight)
	thumb, err := img.engine.Scale(width, height, img.buf.Pixels(), dc, tw, th, interp)
	if err != nil || thumb == nil {
		return nil, engineError("scale", err)
	}
	return img.wrap(thumb), nil
}

// NewThumbnailFromCanvas renders a thumbnail of cs no larger than
// maxWidth x maxHeight. Without a draw context pixels are sampled from the
// canvas directly (nearest neighbour); with one the canvas is flattened and
// resampled, falling back to sampling if that fails.
func NewThumbnailFromCanvas(cs *canvas.State, dc *engine.DrawContext,
	maxWidth, maxHeight int, opts ...Option) (*Image, error) {
	if cs == nil || cs.Width <= 0 || cs.Height <= 0 {
		return nil, ErrEmptySource
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, ErrEmptyTarget
	}
	o := newOptions(opts)

	tw, th := engine.ThumbnailDimensions(cs.Width, cs.Height, maxWidth, maxHeight)
	if tw == cs.Width && th == cs.Height {
		return NewFromCanvasState(cs, opts...)
	}

	scaleX := float64(cs.Width) / float64(tw)
	scaleY := float64(cs.Height) / float64(th)
	if dc == nil {
		return thumbnailNearest(o, cs, tw, th, scaleX, scaleY)
	}

	thumb, err := thumbnailScaled(o, cs, dc, tw, th, guessInterpolation(scaleX, scaleY))
	if err != nil {
		engine.Logger().Warn("thumbnail scaling failed, falling back to sampling",
			"error", err)
		return thumbnailNearest(o, cs, tw, th, scaleX, scaleY)
	}
	return thumb, nil
}

func thumbnailNearest(o options, cs *canvas.State, width, height int,
	scaleX, scaleY float64) (*Image, error) {
	thumb, err := newImage(o, width, height)
	if err != nil {
		return nil, err
	}
	pixels := thumb.buf.Pixels()
	for y := range height {
		sy := int(float64(y) * scaleY)
		for x := range width {
			pixels[y*width+x] = uint32(o.renderer.FlatPixel(cs, int(float64(x)*scaleX), sy))
		}
	}
	return thumb, nil
}

func thumbnailScaled(o options, cs *canvas.State, dc *engine.DrawContext,
	width, height int, interp engine.Interpolation) (*Image, error) {
	flat, err := o.renderer.Flatten(cs, canvas.FlatImageRenderFlags)
	if err != nil || flat == nil {
		return nil, engineError("flatten", err)
	}
	defer o.engine.Free(flat)

	thumb, err := o.engine.Scale(flat.Width(), flat.Height(), flat.Pixels(), dc, width, height, interp)
	if err != nil || thumb == nil {
		return nil, engineError("scale", err)
	}
	return o.wrap(thumb), nil
}

// guessInterpolation picks a cheap filter for mild downscaling and a sharp
// one for strong downscaling.
func guessInterpolation(scaleX, scaleY float64) engine.Interpolation {
	if max(scaleX, scaleY) <= 2.5 {
		return engine.InterpFastBilinear
	}
	return engine.InterpLanczos
}
