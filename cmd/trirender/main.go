//go:build !(js && wasm)

// Command trirender renders the triangle into an offscreen canvas and saves
// the presented frame.
//
// Usage:
//
//	trirender [-config render.toml] [-canvas id] [-width w] [-height h]
//	          [-scale s] [-out file] [-format png|bmp|tiff] [-fallback] [-v]
//
// Flags override values read from the config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle"
	"github.com/gogpu/triangle/backend/native"
	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/internal/config"
	"github.com/gogpu/triangle/internal/imageio"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML or YAML config file")
		canvas     = flag.String("canvas", "", "canvas identifier")
		width      = flag.Int("width", 0, "canvas width")
		height     = flag.Int("height", 0, "canvas height")
		scale      = flag.Float64("scale", 0, "device pixel ratio")
		output     = flag.String("out", "", "output file")
		format     = flag.String("format", "", "image format: png, bmp or tiff (default from -out)")
		fallback   = flag.Bool("fallback", false, "render on the software adapter")
		verbose    = flag.Bool("v", false, "log at debug level")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "canvas":
			cfg.Canvas = *canvas
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "scale":
			cfg.Scale = *scale
		case "out":
			cfg.Output = *output
		case "format":
			cfg.Format = *format
		case "fallback":
			cfg.Fallback = *fallback
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if cfg.LogLevel != "" {
		level, _ := cfg.Level()
		triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	imgFormat, err := outputFormat(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := render(context.Background(), cfg, imgFormat); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	log.Printf("Frame saved to %s (%s)\n", cfg.Output, imgFormat)
}

func outputFormat(cfg config.Config) (imageio.Format, error) {
	if cfg.Format != "" {
		return imageio.ParseFormat(cfg.Format)
	}
	return imageio.FormatOf(cfg.Output)
}

// appOptions translates cfg to triangle options on backend b.
func appOptions(cfg config.Config, b *native.Backend) ([]triangle.Option, error) {
	opts := []triangle.Option{triangle.WithBackend(b)}
	if cfg.Fallback {
		opts = append(opts, triangle.WithForceFallbackAdapter(true))
	}
	if cfg.PowerPreference != "" {
		p, ok := device.ParsePowerPreference(cfg.PowerPreference)
		if !ok {
			return nil, fmt.Errorf("unknown power preference %q", cfg.PowerPreference)
		}
		opts = append(opts, triangle.WithPowerPreference(p))
	}
	if c := cfg.ClearColor; c != nil {
		opts = append(opts, triangle.WithClearColor(gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A}))
	}
	return opts, nil
}

func render(ctx context.Context, cfg config.Config, f imageio.Format) error {
	b := native.New()
	defer b.Close()

	c := b.Document().AddCanvas(cfg.Canvas, cfg.Width, cfg.Height)
	c.SetScaleFactor(cfg.Scale)

	opts, err := appOptions(cfg, b)
	if err != nil {
		return err
	}
	app := triangle.New(opts...)
	if err := app.Initialize(ctx); err != nil {
		return err
	}
	if err := app.Run(ctx, cfg.Canvas); err != nil {
		if f, ok := failure.As(err); ok && f.Diagnostic != "" {
			fmt.Fprintln(os.Stderr, f.Diagnostic)
		}
		return err
	}

	img, err := c.Snapshot()
	if err != nil {
		return err
	}
	return imageio.Save(cfg.Output, img, f)
}
