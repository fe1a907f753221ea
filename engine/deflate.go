package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"picproc/pixel"
)

// Deflate streams carry a 4-byte big-endian uncompressed length followed by
// a zlib stream. Pixel payloads are big-endian A, R, G, B per pixel; alpha
// mask payloads are one alpha byte per pixel.

// ErrCorruptStream is returned when a compressed payload is malformed.
var ErrCorruptStream = errors.New("engine: corrupt compressed stream")

// CompressDeflate encodes pixels as a length-prefixed zlib stream of
// big-endian pixels.
func CompressDeflate(pixels []uint32) ([]byte, error) {
	raw := make([]byte, len(pixels)*4)
	for i, p := range pixels {
		binary.BigEndian.PutUint32(raw[i*4:], p)
	}

	var out bytes.Buffer
	out.Write(binary.BigEndian.AppendUint32(nil, uint32(len(raw))))
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("engine: deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("engine: deflate: %w", err)
	}
	return out.Bytes(), nil
}

// DecompressDeflate restores a width x height buffer from a CompressDeflate
// stream. Colour channels larger than their alpha are clamped to it, so the
// result is always valid premultiplied data.
func (e *Engine) DecompressDeflate(width, height int, data []byte) (*Buffer, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	raw, err := inflate(data, width*height*4)
	if err != nil {
		return nil, err
	}

	buf, err := e.Allocate(width, height)
	if err != nil {
		return nil, err
	}
	for i := range buf.pixels {
		r, g, b, a := pixel.Pixel8(binary.BigEndian.Uint32(raw[i*4:])).Channels()
		buf.pixels[i] = uint32(pixel.Pack(min(r, a), min(g, a), min(b, a), a))
	}
	return buf, nil
}

// DecompressAlphaDeflate restores a width x height alpha mask from a
// length-prefixed zlib stream of alpha bytes. Each pixel is black with the
// mask's alpha.
func (e *Engine) DecompressAlphaDeflate(width, height int, data []byte) (*Buffer, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	raw, err := inflate(data, width*height)
	if err != nil {
		return nil, err
	}
	return e.alphaMask(width, height, raw)
}

// DecompressAlphaZstd restores a width x height alpha mask from a zstd
// stream of alpha bytes, each stored as its difference to the previous one.
func (e *Engine) DecompressAlphaZstd(width, height int, data []byte) (*Buffer, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, err
	}
	raw, err := unzstd(data, width*height)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(raw); i++ {
		raw[i] += raw[i-1]
	}
	return e.alphaMask(width, height, raw)
}

// CompressAlphaZstd encodes the alpha channel of pixels as a DecompressAlphaZstd
// stream.
func CompressAlphaZstd(pixels []uint32) ([]byte, error) {
	raw := make([]byte, len(pixels))
	for i, p := range pixels {
		raw[i] = pixel.Pixel8(p).A()
	}
	for i := len(raw) - 1; i >= 1; i-- {
		raw[i] -= raw[i-1]
	}

	enc, ok := zstdEncPool.Get().(*zstd.Encoder)
	if !ok || enc == nil {
		return nil, fmt.Errorf("engine: zstd encoder unavailable")
	}
	defer zstdEncPool.Put(enc)
	return enc.EncodeAll(raw, nil), nil
}

func (e *Engine) alphaMask(width, height int, alpha []byte) (*Buffer, error) {
	buf, err := e.Allocate(width, height)
	if err != nil {
		return nil, err
	}
	for i, a := range alpha {
		buf.pixels[i] = uint32(pixel.Pack(0, 0, 0, a))
	}
	return buf, nil
}

// inflate decodes a length-prefixed zlib stream that must hold exactly want
// bytes. The declared length is checked before anything is allocated.
func inflate(data []byte, want int) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: missing length header", ErrCorruptStream)
	}
	if size := binary.BigEndian.Uint32(data); uint64(size) != uint64(want) {
		return nil, fmt.Errorf("engine: stream holds %d bytes, want %d", size, want)
	}

	zr, err := zlib.NewReader(bytes.NewReader(data[4:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	defer zr.Close()

	raw := make([]byte, want)
	if _, err := io.ReadFull(zr, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	var extra [1]byte
	n, err := zr.Read(extra[:])
	if n != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrCorruptStream)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	return raw, nil
}
