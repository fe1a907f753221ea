package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"picproc/compose"
	"picproc/engine"
	"picproc/inspect"
	"picproc/parallel"
	"picproc/thumbnail"
)

var cli struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"PICPROC_LOG_LEVEL"`
	Workers  int    `help:"Parallel workers for batch commands, 0 for one per CPU" default:"0" env:"PICPROC_WORKERS"`

	Thumb   thumbnail.CLICmd `cmd:"" help:"Create aspect-fit thumbnails of every image in a folder"`
	Compose compose.CLICmd   `cmd:"" help:"Flatten layers or blend images"`
	Inspect inspect.CLICmd   `cmd:"" help:"Describe images or dump their pixels"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("picproc"),
		kong.Description("Bitmap thumbnailing, compositing and inspection."),
		kong.UsageOnError(),
	)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		kctx.FatalIfErrorf(err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	engine.SetLogger(logger)

	pool := parallel.Start(cli.Workers, engine.NewDrawContext)
	defer pool.Cancel()

	subCmd := kctx.Selected().Name
	err := kctx.Run(pool.Do, pool.Wait, subCmd)
	kctx.FatalIfErrorf(err)
}
