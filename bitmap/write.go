package bitmap

import (
	"io"
	"strings"
	"unsafe"

	"picproc/codec"
	"picproc/engine"
)

func checkPath(path string) error {
	if path == "" || strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	return nil
}

// WritePNG writes the image to path as PNG.
func (img *Image) WritePNG(path string) error {
	return img.Write(path, codec.FormatPNG)
}

// WriteJPEG writes the image to path as JPEG.
func (img *Image) WriteJPEG(path string) error {
	return img.Write(path, codec.FormatJPEG)
}

// WriteQOI writes the image to path as QOI.
func (img *Image) WriteQOI(path string) error {
	return img.Write(path, codec.FormatQOI)
}

// WriteWEBP writes the image to path as lossless WebP.
func (img *Image) WriteWEBP(path string) error {
	return img.Write(path, codec.FormatWEBP)
}

// Write encodes the image in format f into a file sink opened at path. The
// sink is closed whether or not encoding succeeds.
func (img *Image) Write(path string, f codec.Format) error {
	if err := img.live(); err != nil {
		return err
	}
	if err := checkPath(path); err != nil {
		return err
	}

	sink, err := img.codec.OpenFileSink(path)
	if err != nil || sink == nil {
		return engineError("open "+path, err)
	}
	encodeErr := img.codec.Encode(f, img.buf, sink)
	closeErr := img.codec.CloseSink(sink)
	if encodeErr != nil {
		return engineError("encode "+f.String(), encodeErr)
	}
	if closeErr != nil {
		return engineError("close "+path, closeErr)
	}

	engine.Logger().Debug("wrote image", "file", path, "format", f.String())
	return nil
}

// Encode writes the image to w in format f.
func (img *Image) Encode(w io.Writer, f codec.Format) error {
	if err := img.live(); err != nil {
		return err
	}
	sink := codec.NewWriterSink(w)
	defer sink.Close()
	if err := img.codec.Encode(f, img.buf, sink); err != nil {
		return engineError("encode "+f.String(), err)
	}
	return nil
}

// Dump writes the raw pixel buffer to w: Width*Height*4 bytes, row-major, each
// pixel in the machine's native byte order, no header. Errors from w are
// returned unchanged.
func (img *Image) Dump(w io.Writer) error {
	if err := img.live(); err != nil {
		return err
	}
	_, err := w.Write(pixelBytes(img.buf.Pixels()))
	return err
}

// pixelBytes views pixels as bytes without copying: 4 bytes per element,
// len(pixels)*4 bytes in total. The view aliases pixels.
func pixelBytes(pixels []uint32) []byte {
	if len(pixels) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&pixels[0])), len(pixels)*4)
}

// DumpCompressed writes the pixels as a delta+zstd stream that
// NewFromCompressed restores.
func (img *Image) DumpCompressed(w io.Writer) error {
	if err := img.live(); err != nil {
		return err
	}
	data, err := engine.Compress(img.buf.Pixels())
	if err != nil {
		return engineError("compress", err)
	}
	_, err = w.Write(data)
	return err
}

// DumpDeflate writes the pixels as a length-prefixed zlib stream that
// NewFromDeflate restores.
func (img *Image) DumpDeflate(w io.Writer) error {
	if err := img.live(); err != nil {
		return err
	}
	data, err := engine.CompressDeflate(img.buf.Pixels())
	if err != nil {
		return engineError("deflate", err)
	}
	_, err = w.Write(data)
	return err
}
