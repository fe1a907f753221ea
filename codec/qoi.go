package codec

import (
	"encoding/binary"
	"image"
	"io"
)

// QOI chunk tags.
const (
	qoiOpIndex byte = 0b00_000000
	qoiOpDiff  byte = 0b01_000000
	qoiOpLuma  byte = 0b10_000000
	qoiOpRun   byte = 0b11_000000
	qoiOpRGB   byte = 0b1111_1110
	qoiOpRGBA  byte = 0b1111_1111
)

var qoiEnd = []byte{0, 0, 0, 0, 0, 0, 0, 1}

func qoiHash(px [4]byte) byte {
	return (px[0]*3 + px[1]*5 + px[2]*7 + px[3]*11) % 64
}

// encodeQOI writes img as a 4 channel sRGB QOI stream. The channels are
// written exactly as stored in img, which holds straight alpha.
func encodeQOI(w io.Writer, img *image.NRGBA) error {
	width, height := img.Rect.Dx(), img.Rect.Dy()

	out := make([]byte, 0, 14+width*height*2+len(qoiEnd))
	out = append(out, qoiSig...)
	out = binary.BigEndian.AppendUint32(out, uint32(width))
	out = binary.BigEndian.AppendUint32(out, uint32(height))
	out = append(out, 4, 0)

	var index [64][4]byte
	prev := [4]byte{0, 0, 0, 255}
	run := 0
	last := width*height - 1

	for y := range height {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := range width {
			var px [4]byte
			copy(px[:], row[x*4:x*4+4])

			if px == prev {
				run++
				if run == 62 || y*width+x == last {
					out = append(out, qoiOpRun|byte(run-1))
					run = 0
				}
				continue
			}
			if run > 0 {
				out = append(out, qoiOpRun|byte(run-1))
				run = 0
			}

			pos := qoiHash(px)
			switch {
			case index[pos] == px:
				out = append(out, qoiOpIndex|pos)
			case px[3] == prev[3]:
				index[pos] = px
				vr := int8(px[0] - prev[0])
				vg := int8(px[1] - prev[1])
				vb := int8(px[2] - prev[2])
				vgr, vgb := vr-vg, vb-vg
				switch {
				case vr > -3 && vr < 2 && vg > -3 && vg < 2 && vb > -3 && vb < 2:
					out = append(out, qoiOpDiff|byte(vr+2)<<4|byte(vg+2)<<2|byte(vb+2))
				case vgr > -9 && vgr < 8 && vg > -33 && vg < 32 && vgb > -9 && vgb < 8:
					out = append(out, qoiOpLuma|byte(vg+32), byte(vgr+8)<<4|byte(vgb+8))
				default:
					out = append(out, qoiOpRGB, px[0], px[1], px[2])
				}
			default:
				index[pos] = px
				out = append(out, qoiOpRGBA, px[0], px[1], px[2], px[3])
			}
			prev = px
		}
	}
	out = append(out, qoiEnd...)

	_, err := w.Write(out)
	return err
}
