package engine

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Interpolation selects the resampling method used by Scale.
type Interpolation int

const (
	InterpNearest      Interpolation = iota // nearest neighbour
	InterpFastBilinear                      // approximate bilinear, fastest smooth mode
	InterpBilinear
	InterpBicubic // Catmull-Rom
	InterpArea    // box filter, good for strong downscaling
	InterpGaussian
	InterpLanczos
	InterpMitchell
	InterpHermite
	InterpBSpline
	interpCount
)

var interpNames = [interpCount]string{
	InterpNearest:      "nearest",
	InterpFastBilinear: "fast-bilinear",
	InterpBilinear:     "bilinear",
	InterpBicubic:      "bicubic",
	InterpArea:         "area",
	InterpGaussian:     "gaussian",
	InterpLanczos:      "lanczos",
	InterpMitchell:     "mitchell",
	InterpHermite:      "hermite",
	InterpBSpline:      "bspline",
}

// InterpolationNames lists the names accepted by ParseInterpolation.
func InterpolationNames() []string {
	return interpNames[:]
}

// String returns the interpolation name.
func (i Interpolation) String() string {
	if !i.IsValid() {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpNames[i]
}

// IsValid reports whether i is a known interpolation.
func (i Interpolation) IsValid() bool {
	return i >= 0 && i < interpCount
}

// ParseInterpolation looks an interpolation up by name.
func ParseInterpolation(s string) (Interpolation, error) {
	for i, name := range interpNames {
		if name == s {
			return Interpolation(i), nil
		}
	}
	return InterpBilinear, fmt.Errorf("unknown interpolation %q", s)
}

// scaler returns the x/image/draw scaler for kernel based modes.
func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case InterpNearest:
		return draw.NearestNeighbor
	case InterpFastBilinear:
		return draw.ApproxBiLinear
	case InterpBilinear:
		return draw.BiLinear
	case InterpBicubic:
		return draw.CatmullRom
	default:
		return nil
	}
}

// filter returns the imaging resample filter for filter based modes.
func (i Interpolation) filter() imaging.ResampleFilter {
	switch i {
	case InterpArea:
		return imaging.Box
	case InterpGaussian:
		return imaging.Gaussian
	case InterpLanczos:
		return imaging.Lanczos
	case InterpMitchell:
		return imaging.MitchellNetravali
	case InterpHermite:
		return imaging.Hermite
	default:
		return imaging.BSpline
	}
}

type scalerKey struct {
	kernel                 *draw.Kernel
	dstW, dstH, srcW, srcH int
}

// DrawContext is caller-owned scratch state for Scale: conversion images and
// the most recently built kernel scaler. A DrawContext must not be used by
// more than one Scale call at a time.
type DrawContext struct {
	src    *image.RGBA
	dst    *image.RGBA
	key    scalerKey
	scaler draw.Scaler
}

// NewDrawContext returns an empty draw context.
func NewDrawContext() *DrawContext {
	return &DrawContext{}
}

// kernelScaler returns a scaler for k, rebuilding it only when the kernel or
// the dimensions change.
func (dc *DrawContext) kernelScaler(k *draw.Kernel, dw, dh, sw, sh int) draw.Scaler {
	key := scalerKey{kernel: k, dstW: dw, dstH: dh, srcW: sw, srcH: sh}
	if dc.scaler == nil || dc.key != key {
		dc.key = key
		dc.scaler = k.NewScaler(dw, dh, sw, sh)
	}
	return dc.scaler
}

// Scale resamples srcWidth x srcHeight pixels into a new width x height
// buffer. Unknown interpolations fall back to bilinear with a warning.
func (e *Engine) Scale(srcWidth, srcHeight int, src []uint32, dc *DrawContext,
	width, height int, interp Interpolation) (*Buffer, error) {
	if dc == nil {
		return nil, ErrNoDrawContext
	}
	if width <= 0 || height <= 0 {
		return nil, ErrZeroScale
	}
	if err := CheckDimensions(srcWidth, srcHeight); err != nil {
		return nil, err
	}
	if len(src) < srcWidth*srcHeight {
		return nil, ErrDataTooSmall
	}
	if !interp.IsValid() {
		Logger().Warn("unknown interpolation, falling back to bilinear", "interpolation", int(interp))
		interp = InterpBilinear
	}

	dst, err := e.Allocate(width, height)
	if err != nil {
		return nil, err
	}

	dc.src = rgbaScratch(dc.src, srcWidth, srcHeight)
	loadRGBA(dc.src, src, srcWidth, srcHeight)

	if s := interp.scaler(); s != nil {
		if k, ok := s.(*draw.Kernel); ok {
			s = dc.kernelScaler(k, width, height, srcWidth, srcHeight)
		}
		dc.dst = rgbaScratch(dc.dst, width, height)
		s.Scale(dc.dst, dc.dst.Rect, dc.src, dc.src.Rect, draw.Src, nil)
		storeRGBA(dst.pixels, dc.dst, width, height)
	} else {
		out := imaging.Resize(dc.src, width, height, interp.filter())
		storeNRGBA(dst.pixels, out, width, height)
	}

	Logger().Debug("scaled pixels",
		"from_width", srcWidth, "from_height", srcHeight,
		"to_width", width, "to_height", height,
		"interpolation", interp.String())
	return dst, nil
}
