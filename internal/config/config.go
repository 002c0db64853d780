// Package config loads trirender settings from a TOML or YAML file.
//
// The file format is selected by extension (.toml, .yaml, .yml). Keys that
// are absent keep their defaults:
//
//	canvas = "canvas-a"
//	width = 600
//	height = 400
//	output = "triangle.png"
//	fallback = true
//	log_level = "debug"
//
//	[clear_color]
//	r = 0.1
//	g = 0.2
//	b = 0.3
//	a = 1.0
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Errors returned by Load and Validate.
var (
	// ErrUnknownExtension is returned for files that are neither TOML nor
	// YAML.
	ErrUnknownExtension = errors.New("config: unknown file extension")

	// ErrInvalid is returned by Validate.
	ErrInvalid = errors.New("config: invalid")
)

// maxFileSize bounds the config file read.
const maxFileSize = 1 << 20

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `toml:"r" yaml:"r"`
	G float64 `toml:"g" yaml:"g"`
	B float64 `toml:"b" yaml:"b"`
	A float64 `toml:"a" yaml:"a"`
}

// Config holds the settings of one render.
type Config struct {
	// Canvas is the identifier of the canvas to render.
	Canvas string `toml:"canvas" yaml:"canvas"`

	// Width and Height are the canvas layout size. The image is Scale
	// times larger in each dimension.
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	// Scale is the canvas device pixel ratio.
	Scale float64 `toml:"scale" yaml:"scale"`

	// Output is the image path. Its extension selects the image format
	// unless Format is set.
	Output string `toml:"output" yaml:"output"`
	Format string `toml:"format" yaml:"format"`

	// Fallback requests the software adapter.
	Fallback bool `toml:"fallback" yaml:"fallback"`

	// PowerPreference is "low", "high" or empty.
	PowerPreference string `toml:"power_preference" yaml:"power_preference"`

	// ClearColor, if set, replaces the default background.
	ClearColor *Color `toml:"clear_color" yaml:"clear_color"`

	// LogLevel is debug, info, warn or error. Empty disables logging.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the settings of the reference scenario.
func Default() Config {
	return Config{
		Canvas: "canvas-a",
		Width:  600,
		Height: 400,
		Scale:  1,
		Output: "triangle.png",
	}
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config: %s is larger than %d bytes", path, maxFileSize)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Canvas == "":
		return fmt.Errorf("%w: canvas is empty", ErrInvalid)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: size %dx%d is negative", ErrInvalid, c.Width, c.Height)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale %v is not positive", ErrInvalid, c.Scale)
	case c.Output == "":
		return fmt.Errorf("%w: output is empty", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel, Info when it is empty.
func (c Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return l, nil
}
