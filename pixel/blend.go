package pixel

// Mode is a layer compositing mode. All modes operate on premultiplied pixels.
type Mode uint8

const (
	ModeNormal Mode = iota // S + D*(1-Sa)
	ModeMultiply
	ModeScreen
	ModeDarken
	ModeLighten
	ModeAdd   // min(S + D, 255)
	ModeErase // D*(1-Sa)
	modeCount
)

var modeNames = [modeCount]string{
	ModeNormal:   "normal",
	ModeMultiply: "multiply",
	ModeScreen:   "screen",
	ModeDarken:   "darken",
	ModeLighten:  "lighten",
	ModeAdd:      "add",
	ModeErase:    "erase",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m >= modeCount {
		return "unknown"
	}
	return modeNames[m]
}

// ParseMode looks a mode up by its String name.
func ParseMode(s string) (Mode, bool) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), true
		}
	}
	return ModeNormal, false
}

// BlendFunc combines one premultiplied source pixel with one destination pixel.
type BlendFunc func(sr, sg, sb, sa, dr, dg, db, da uint8) (r, g, b, a uint8)

// Func returns the blend function of the mode, source-over for unknown modes.
func (m Mode) Func() BlendFunc {
	switch m {
	case ModeMultiply:
		return blendMultiply
	case ModeScreen:
		return blendScreen
	case ModeDarken:
		return blendDarken
	case ModeLighten:
		return blendLighten
	case ModeAdd:
		return blendAdd
	case ModeErase:
		return blendErase
	default:
		return blendNormal
	}
}

// Composite blends src onto dst with the given mode after scaling every source
// pixel by opacity. len(src) must be at least len(dst).
func Composite(dst, src []uint32, mode Mode, opacity uint8) {
	if opacity == 0 {
		return
	}
	fn := mode.Func()
	src = src[:len(dst)]
	for i, s := range src {
		sr, sg, sb, sa := Pixel8(s).Channels()
		if opacity != 255 {
			sr, sg, sb, sa = MulDiv255(sr, opacity), MulDiv255(sg, opacity), MulDiv255(sb, opacity), MulDiv255(sa, opacity)
		}
		if sa == 0 && mode != ModeAdd {
			continue
		}
		dr, dg, db, da := Pixel8(dst[i]).Channels()
		r, g, b, a := fn(sr, sg, sb, sa, dr, dg, db, da)
		dst[i] = uint32(Pack(r, g, b, a))
	}
}

// BlendTo composites src onto dst in place. Every source pixel is first tinted
// toward color by color's alpha, keeping the source coverage, and then drawn
// source-over with the given opacity. len(src) must be at least len(dst).
func BlendTo(dst, src []uint32, color UPixel8, opacity uint8) {
	if opacity == 0 {
		return
	}
	cr, cg, cb, ca := color.Channels()
	src = src[:len(dst)]
	for i, s := range src {
		sr, sg, sb, sa := Pixel8(s).Channels()
		if sa == 0 {
			continue
		}
		if ca != 0 {
			sr = lerp(sr, MulDiv255(cr, sa), ca)
			sg = lerp(sg, MulDiv255(cg, sa), ca)
			sb = lerp(sb, MulDiv255(cb, sa), ca)
		}
		sr, sg, sb, sa = MulDiv255(sr, opacity), MulDiv255(sg, opacity), MulDiv255(sb, opacity), MulDiv255(sa, opacity)
		dr, dg, db, da := Pixel8(dst[i]).Channels()
		r, g, b, a := blendNormal(sr, sg, sb, sa, dr, dg, db, da)
		dst[i] = uint32(Pack(r, g, b, a))
	}
}

// BlendBackground draws color behind every pixel: p = p + color*(1-Pa).
func BlendBackground(pixels []uint32, color UPixel8) {
	br, bg, bb, ba := Premultiply(color).Channels()
	if ba == 0 {
		return
	}
	for i, p := range pixels {
		r, g, b, a := Pixel8(p).Channels()
		if a == 255 {
			continue
		}
		inv := 255 - a
		pixels[i] = uint32(Pack(
			addClamp(r, MulDiv255(br, inv)),
			addClamp(g, MulDiv255(bg, inv)),
			addClamp(b, MulDiv255(bb, inv)),
			addClamp(a, MulDiv255(ba, inv))))
	}
}

func lerp(a, b, t uint8) uint8 {
	return uint8((uint32(a)*uint32(255-t) + uint32(b)*uint32(t) + 127) / 255)
}

func blendNormal(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	inv := 255 - sa
	return addClamp(sr, MulDiv255(dr, inv)),
		addClamp(sg, MulDiv255(dg, inv)),
		addClamp(sb, MulDiv255(db, inv)),
		addClamp(sa, MulDiv255(da, inv))
}

func blendErase(_, _, _, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	inv := 255 - sa
	return MulDiv255(dr, inv), MulDiv255(dg, inv), MulDiv255(db, inv), MulDiv255(da, inv)
}

func blendAdd(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	return addClamp(sr, dr), addClamp(sg, dg), addClamp(sb, db), addClamp(sa, da)
}

func blendMultiply(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, MulDiv255)
}

func blendScreen(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d uint8) uint8 {
		return 255 - MulDiv255(255-s, 255-d)
	})
}

func blendDarken(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, minByte)
}

func blendLighten(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, maxByte)
}

// separable applies a per-channel blend on straight colours and recombines:
// (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Sc, Dc).
func separable(sr, sg, sb, sa, dr, dg, db, da uint8, fn func(s, d uint8) uint8) (uint8, uint8, uint8, uint8) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}
	invSa := 255 - sa
	invDa := 255 - da
	sada := MulDiv255(sa, da)
	ch := func(s, d uint8) uint8 {
		b := fn(unmul(s, sa), unmul(d, da))
		return addClamp(addClamp(MulDiv255(d, invSa), MulDiv255(s, invDa)), MulDiv255(sada, b))
	}
	return ch(sr, dr), ch(sg, dg), ch(sb, db), addClamp(sa, MulDiv255(da, invSa))
}

func minByte(a, b uint8) uint8 {
	return min(a, b)
}

func maxByte(a, b uint8) uint8 {
	return max(a, b)
}
