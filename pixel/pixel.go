// Package pixel defines the packed 32-bit pixel values shared by the engine,
// the canvas renderer and the bitmap core.
//
// Both pixel types store their channels as A<<24 | R<<16 | G<<8 | B, which in
// little-endian memory order is the byte sequence B, G, R, A.
package pixel

import (
	"fmt"
	"image/color"
)

// Pixel8 is a premultiplied 8-bit-per-channel pixel.
type Pixel8 uint32

// UPixel8 is a straight (non-premultiplied) 8-bit-per-channel pixel.
// Tint and background colours are given in this form.
type UPixel8 uint32

// Transparent is the zero pixel.
const Transparent Pixel8 = 0

// Pack builds a Pixel8 from already premultiplied channels.
func Pack(r, g, b, a uint8) Pixel8 {
	return Pixel8(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// PackU builds a UPixel8 from straight channels.
func PackU(r, g, b, a uint8) UPixel8 {
	return UPixel8(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Channels returns the premultiplied channels.
func (p Pixel8) Channels() (r, g, b, a uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p), uint8(p >> 24)
}

// A returns the alpha channel.
func (p Pixel8) A() uint8 {
	return uint8(p >> 24)
}

// Channels returns the straight channels.
func (p UPixel8) Channels() (r, g, b, a uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p), uint8(p >> 24)
}

// A returns the alpha channel.
func (p UPixel8) A() uint8 {
	return uint8(p >> 24)
}

// String formats the colour as #RRGGBBAA.
func (p UPixel8) String() string {
	r, g, b, a := p.Channels()
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// RGBA implements color.Color.
func (p Pixel8) RGBA() (r, g, b, a uint32) {
	pr, pg, pb, pa := p.Channels()
	return uint32(pr) * 0x101, uint32(pg) * 0x101, uint32(pb) * 0x101, uint32(pa) * 0x101
}

// RGBA implements color.Color.
func (p UPixel8) RGBA() (r, g, b, a uint32) {
	return Premultiply(p).RGBA()
}

// Premultiply converts a straight pixel to premultiplied form.
func Premultiply(p UPixel8) Pixel8 {
	r, g, b, a := p.Channels()
	return Pack(MulDiv255(r, a), MulDiv255(g, a), MulDiv255(b, a), a)
}

// Unpremultiply converts a premultiplied pixel back to straight form.
// Fully transparent pixels become transparent black.
func Unpremultiply(p Pixel8) UPixel8 {
	r, g, b, a := p.Channels()
	if a == 0 {
		return 0
	}
	return PackU(unmul(r, a), unmul(g, a), unmul(b, a), a)
}

// FromColor converts any color.Color to a premultiplied pixel.
func FromColor(c color.Color) Pixel8 {
	r, g, b, a := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

// MulDiv255 multiplies two channel values and divides by 255 with rounding.
func MulDiv255(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

func unmul(c, a uint8) uint8 {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func addClamp(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}
