// Package inspect implements the inspect command: image metadata and raw
// pixel dumps.
package inspect

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"picproc/bitmap"
	"picproc/codec"
	"picproc/pixel"
)

type InfoCmd struct {
	Files []string `arg:"" name:"file" help:"Images to describe" type:"existingfile"`
}

type DumpCmd struct {
	File     string `arg:"" help:"Image to dump" type:"existingfile"`
	Out      string `help:"Output file, '-' for stdout" short:"o" default:"-"`
	Compress bool   `help:"Write the delta+zstd compressed stream instead of raw pixels" xor:"encoding" default:"false"`
	Deflate  bool   `help:"Write a length-prefixed zlib stream of big-endian pixels instead of raw pixels" xor:"encoding" default:"false"`
}

type CLICmd struct {
	Info InfoCmd `cmd:"" help:"Print format, size and color information"`
	Dump DumpCmd `cmd:"" help:"Write raw premultiplied pixels (4 bytes each, native byte order, no header)"`

	stdout io.Writer
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if kctx.Selected().Name == "dump" && c.Dump.Out == "" {
		return fmt.Errorf("no output given")
	}
	return nil
}

func (c *CLICmd) Run(subCmd string) error {
	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	switch subCmd {
	case "info":
		return c.Info.run(out)
	case "dump":
		return c.Dump.run(out)
	}
	return fmt.Errorf("unknown inspect command %q", subCmd)
}

func (c *InfoCmd) run(out io.Writer) error {
	var errCount int
	for _, path := range c.Files {
		if err := describe(out, path); err != nil {
			errCount++
			slog.Error("could not inspect image", "file", path, "error", err)
		}
	}
	if errCount > 0 {
		return fmt.Errorf("error inspecting %d files", errCount)
	}
	return nil
}

func describe(out io.Writer, path string) error {
	format, err := sniff(path)
	if err != nil {
		return err
	}

	img, err := bitmap.Load(path)
	if err != nil {
		return err
	}
	defer img.Close()

	color := "mixed"
	if p, ok := img.SamePixel(); ok {
		color = pixel.Unpremultiply(p).String()
	}
	_, err = fmt.Fprintf(out, "%s\t%s\t%dx%d\t%s\n", path, format, img.Width(), img.Height(), color)
	return err
}

// sniff guesses the format from the first bytes of the file.
func sniff(path string) (codec.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return codec.FormatUnknown, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 16)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return codec.FormatUnknown, fmt.Errorf("could not read %q: %w", path, err)
	}
	return codec.Guess(head[:n]), nil
}

func (c *DumpCmd) run(stdout io.Writer) (err error) {
	img, err := bitmap.Load(c.File)
	if err != nil {
		return err
	}
	defer img.Close()

	out := stdout
	if c.Out != "-" {
		sink, openErr := codec.OpenFileSink(c.Out)
		if openErr != nil {
			return openErr
		}
		defer func() {
			if closeErr := sink.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		out = sink
	} else {
		w := bufio.NewWriter(stdout)
		defer func() {
			if flushErr := w.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
		}()
		out = w
	}

	switch {
	case c.Compress:
		err = img.DumpCompressed(out)
	case c.Deflate:
		err = img.DumpDeflate(out)
	default:
		err = img.Dump(out)
	}
	if err != nil {
		return fmt.Errorf("could not dump %q: %w", c.File, err)
	}

	slog.Info("dumped", "file", c.File, "width", img.Width(), "height", img.Height(),
		"compressed", c.Compress, "deflate", c.Deflate)
	return nil
}
