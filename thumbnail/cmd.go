// Package thumbnail implements the thumb command: aspect-fit thumbnails of
// every image in a folder.
package thumbnail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/kong"

	"picproc/bitmap"
	"picproc/codec"
	"picproc/engine"
	"picproc/parallel"
	"picproc/pixel"
)

type CLICmd struct {
	Scan          string `help:"Source folder to scan" default:"."`
	Dest          string `help:"Destination folder for thumbnails. Relative to scan dir if not absolute." default:"thumbs"`
	Width         int    `help:"Box width. Defaults to the height." short:"W"`
	Height        int    `help:"Box height. Defaults to the width." short:"H"`
	Expand        bool   `help:"Center the thumbnail on a canvas of exactly the box size" default:"false"`
	Fill          string `help:"Background color (#RGB, #RGBA, #RRGGBB, #RRGGBBAA or a name) drawn behind the thumbnail"`
	Interpolation string `help:"Resampling filter" enum:"nearest,fast-bilinear,bilinear,bicubic,area,gaussian,lanczos,mitchell,hermite,bspline" default:"bicubic"`
	Format        string `help:"Output format. 'same' keeps the source format when it can be written, PNG otherwise. bmp and jpeg drop transparency." enum:"same,png,jpeg,webp,qoi,bmp,tiff" default:"png"`
	Overwrite     bool   `help:"Replace existing thumbnails" default:"false"`

	interp    engine.Interpolation
	fillColor pixel.UPixel8
	fill      bool
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	switch {
	case c.Width < 0:
		return fmt.Errorf("invalid thumbnail width: %d", c.Width)
	case c.Height < 0:
		return fmt.Errorf("invalid thumbnail height: %d", c.Height)
	case c.Width == 0 && c.Height == 0:
		return fmt.Errorf("no thumbnail dimensions given")
	case c.Width == 0:
		c.Width = c.Height
	case c.Height == 0:
		c.Height = c.Width
	}

	if c.interp, err = engine.ParseInterpolation(c.Interpolation); err != nil {
		return err
	}

	if c.Format == "" {
		c.Format = codec.FormatPNG.String()
	}
	if c.Format != "same" && !codec.ParseFormat(c.Format).CanEncode() {
		return fmt.Errorf("unsupported output format %q", c.Format)
	}

	if c.Fill != "" {
		if c.fillColor, err = pixel.ParseHex(c.Fill); err != nil {
			return fmt.Errorf("invalid fill color: %w", err)
		}
		c.fill = true
	}

	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc[*engine.DrawContext], wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func(fileName string) func(*engine.DrawContext) {
			return func(dc *engine.DrawContext) {
				logger := slog.Default().With("file", filepath.Join(c.Scan, fileName))
				if err := c.process(logger, dc, fileName); err != nil {
					errCount.Add(1)
					logger.Error("could not create thumbnail", "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) process(logger *slog.Logger, dc *engine.DrawContext, fileName string) error {
	img, err := bitmap.Load(filepath.Join(c.Scan, fileName))
	if err != nil {
		return err
	}
	defer img.Close()

	thumb, err := img.Scaled(c.Width, c.Height, c.Expand, c.interp, dc)
	if err != nil {
		return fmt.Errorf("could not scale: %w", err)
	}
	defer thumb.Close()
	logger.Info("scaled", "from_width", img.Width(), "from_height", img.Height(),
		"width", thumb.Width(), "height", thumb.Height())

	if c.fill {
		if err := thumb.AddBackground(c.fillColor); err != nil {
			return err
		}
	}

	return save(thumb, c.outputFormat(fileName), c.Dest, fileName, c.Overwrite)
}

func (c *CLICmd) outputFormat(fileName string) codec.Format {
	if c.Format != "same" {
		return codec.ParseFormat(c.Format)
	}
	if f := codec.FormatFromPath(fileName); f.CanEncode() {
		return f
	}
	return codec.FormatPNG
}
