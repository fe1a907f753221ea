// Package compose implements the compose command: flattening layer images
// into one and blending an overlay onto a base image.
package compose

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"picproc/bitmap"
	"picproc/canvas"
	"picproc/codec"
	"picproc/engine"
	"picproc/pixel"
)

type FlattenCmd struct {
	Layers     []string `arg:"" name:"layer" help:"Layer images, bottom first, as PATH[@OPACITY[,MODE]]. OPACITY is 0-255 or a percentage, MODE one of normal, multiply, screen, darken, lighten, add, erase."`
	Background string   `help:"Canvas background color" default:"transparent"`
	Out        string   `help:"Output file, format taken from the extension. .bmp and .jpg drop transparency." short:"o" required:""`
	Thumbnail  int      `help:"Write a thumbnail fitting a SIZE x SIZE box instead of the full image" placeholder:"SIZE"`
	Sampled    bool     `help:"Sample thumbnail pixels from the layers instead of resampling the flattened image" default:"false"`

	layers     []layerSpec
	background pixel.UPixel8
}

type BlendCmd struct {
	Base    string `arg:"" help:"Base image"`
	Overlay string `arg:"" help:"Overlay image, same size as the base"`
	Tint    string `help:"Color the overlay is tinted toward; its alpha is the tint strength" default:"transparent"`
	Opacity uint8  `help:"Overlay opacity, 0-255" default:"255"`
	Out     string `help:"Output file, format taken from the extension. .bmp and .jpg drop transparency." short:"o" required:""`

	tint pixel.UPixel8
}

type CLICmd struct {
	Flatten FlattenCmd `cmd:"" help:"Flatten layer images into a single image"`
	Blend   BlendCmd   `cmd:"" help:"Blend an overlay image onto a base image"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch kctx.Selected().Name {
	case "flatten":
		return c.Flatten.validate()
	case "blend":
		return c.Blend.validate()
	}
	return nil
}

func (c *CLICmd) Run(subCmd string) error {
	switch subCmd {
	case "flatten":
		return c.Flatten.run()
	case "blend":
		return c.Blend.run()
	}
	return fmt.Errorf("unknown compose command %q", subCmd)
}

func outputFormat(path string) (codec.Format, error) {
	f := codec.FormatFromPath(path)
	if !f.CanEncode() {
		return codec.FormatUnknown, fmt.Errorf("unsupported output format for %q", path)
	}
	return f, nil
}

func (c *FlattenCmd) validate() error {
	if _, err := outputFormat(c.Out); err != nil {
		return err
	}
	if c.Thumbnail < 0 {
		return fmt.Errorf("invalid thumbnail size: %d", c.Thumbnail)
	}
	var err error
	if c.background, err = pixel.ParseHex(c.Background); err != nil {
		return fmt.Errorf("invalid background color: %w", err)
	}
	c.layers = make([]layerSpec, 0, len(c.Layers))
	for _, s := range c.Layers {
		l, err := parseLayerSpec(s)
		if err != nil {
			return err
		}
		c.layers = append(c.layers, l)
	}
	return nil
}

func (c *FlattenCmd) run() error {
	cs := &canvas.State{Background: c.background}
	for _, spec := range c.layers {
		img, err := bitmap.Load(spec.path)
		if err != nil {
			return fmt.Errorf("could not load layer %q: %w", spec.path, err)
		}
		defer img.Close()

		if len(cs.Layers) == 0 {
			cs.Width, cs.Height = img.Width(), img.Height()
		} else if img.Width() != cs.Width || img.Height() != cs.Height {
			return fmt.Errorf("layer %q is %dx%d, canvas is %dx%d",
				spec.path, img.Width(), img.Height(), cs.Width, cs.Height)
		}
		cs.Layers = append(cs.Layers, canvas.Layer{
			Title:   spec.path,
			Pixels:  img.Pixels(),
			Opacity: spec.opacity,
			Mode:    spec.mode,
		})
	}

	flat, err := c.flatten(cs)
	if err != nil {
		return fmt.Errorf("could not flatten layers: %w", err)
	}
	defer flat.Close()

	f, _ := outputFormat(c.Out)
	if err := flat.Write(c.Out, f); err != nil {
		return fmt.Errorf("could not write %q: %w", c.Out, err)
	}
	slog.Info("flattened", "layers", len(cs.Layers), "width", cs.Width, "height", cs.Height, "out", c.Out)
	return nil
}

func (c *FlattenCmd) flatten(cs *canvas.State) (*bitmap.Image, error) {
	if c.Thumbnail <= 0 {
		return bitmap.NewFromCanvasState(cs)
	}
	var dc *engine.DrawContext
	if !c.Sampled {
		dc = engine.NewDrawContext()
	}
	return bitmap.NewThumbnailFromCanvas(cs, dc, c.Thumbnail, c.Thumbnail)
}

func (c *BlendCmd) validate() error {
	if _, err := outputFormat(c.Out); err != nil {
		return err
	}
	var err error
	if c.tint, err = pixel.ParseHex(c.Tint); err != nil {
		return fmt.Errorf("invalid tint color: %w", err)
	}
	return nil
}

func (c *BlendCmd) run() error {
	base, err := bitmap.Load(c.Base)
	if err != nil {
		return fmt.Errorf("could not load base %q: %w", c.Base, err)
	}
	defer base.Close()

	overlay, err := bitmap.Load(c.Overlay)
	if err != nil {
		return fmt.Errorf("could not load overlay %q: %w", c.Overlay, err)
	}
	defer overlay.Close()

	if err := base.BlendWith(overlay, c.tint, c.Opacity); err != nil {
		return err
	}

	f, _ := outputFormat(c.Out)
	if err := base.Write(c.Out, f); err != nil {
		return fmt.Errorf("could not write %q: %w", c.Out, err)
	}
	slog.Info("blended", "base", c.Base, "overlay", c.Overlay, "out", c.Out)
	return nil
}
