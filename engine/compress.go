package engine

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Compressed pixel streams are the little-endian pixel bytes with every byte
// replaced by its difference to the same channel of the previous pixel, then
// zstd compressed. Flat areas delta to zero and compress well.

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1),
			zstd.WithDecodeAllCapLimit(true))
		return dec
	},
}

// Compress encodes pixels as a delta+zstd stream.
func Compress(pixels []uint32) ([]byte, error) {
	raw := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		binary.LittleEndian.PutUint32(raw[i*4:], p)
	}
	for i := len(raw) - 1; i >= 4; i-- {
		raw[i] -= raw[i-4]
	}

	enc, ok := zstdEncPool.Get().(*zstd.Encoder)
	if !ok || enc == nil {
		return nil, fmt.Errorf("engine: zstd encoder unavailable")
	}
	defer zstdEncPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

// Decompress restores a width x height buffer from a Compress stream.
func (e *Engine) Decompress(width, height int, data []byte) (*Buffer, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	raw, err := unzstd(data, width*height*4)
	if err != nil {
		return nil, err
	}
	for i := 4; i < len(raw); i++ {
		raw[i] += raw[i-4]
	}

	buf, err := e.Allocate(width, height)
	if err != nil {
		return nil, err
	}
	for i := range buf.pixels {
		buf.pixels[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return buf, nil
}

// unzstd decodes a zstd stream that must hold exactly want bytes. Output is
// capped at want; longer streams fail with zstd.ErrDecoderSizeExceeded
// before they are fully decoded.
func unzstd(data []byte, want int) ([]byte, error) {
	dec, ok := zstdDecPool.Get().(*zstd.Decoder)
	if !ok || dec == nil {
		return nil, fmt.Errorf("engine: zstd decoder unavailable")
	}
	raw, err := dec.DecodeAll(data, make([]byte, 0, want))
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("engine: zstd decode: %w", err)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("engine: decompressed %d bytes, want %d", len(raw), want)
	}
	return raw, nil
}
