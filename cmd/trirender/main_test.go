//go:build !(js && wasm)

package main

import (
	"errors"
	"testing"

	"github.com/gogpu/triangle/backend/native"
	"github.com/gogpu/triangle/internal/config"
	"github.com/gogpu/triangle/internal/imageio"
)

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		output, format string
		want           imageio.Format
	}{
		{"frame.png", "", imageio.PNG},
		{"frame.bmp", "", imageio.BMP},
		{"frame.png", "tiff", imageio.TIFF},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.Output, cfg.Format = tt.output, tt.format
		got, err := outputFormat(cfg)
		if err != nil || got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %v, %v; want %v", tt.output, tt.format, got, err, tt.want)
		}
	}

	cfg := config.Default()
	cfg.Output = "frame"
	if _, err := outputFormat(cfg); !errors.Is(err, imageio.ErrUnsupportedFormat) {
		t.Errorf("outputFormat without extension: %v", err)
	}
}

func TestAppOptions(t *testing.T) {
	b := native.New()

	cfg := config.Default()
	cfg.Fallback = true
	cfg.PowerPreference = "high"
	cfg.ClearColor = &config.Color{R: 1, A: 1}
	opts, err := appOptions(cfg, b)
	if err != nil {
		t.Fatalf("appOptions() error = %v", err)
	}
	if len(opts) != 4 {
		t.Errorf("len(opts) = %d, want 4", len(opts))
	}

	cfg.PowerPreference = "turbo"
	if _, err := appOptions(cfg, b); err == nil {
		t.Error("appOptions() with unknown power preference: error = nil")
	}
}
