// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/gputest"
)

func newDevice(t *testing.T) (*gputest.Backend, *device.Context) {
	t.Helper()
	b := gputest.NewBackend()
	dc, err := device.Acquire(context.Background(), b)
	if err != nil {
		t.Fatalf("device.Acquire() error = %v", err)
	}
	t.Cleanup(dc.Release)
	return b, dc
}

func bind(t *testing.T, dc *device.Context, c gpucore.Canvas, opts ...Option) *Surface {
	t.Helper()
	s, err := Bind(context.Background(), dc, c, opts...)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	t.Cleanup(s.Release)
	return s
}

func TestBindConfiguresFromCanvas(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("canvas-a", 600, 400)

	s := bind(t, dc, c)

	want := Configuration{
		Format:      gputypes.TextureFormatBGRA8Unorm,
		Width:       600,
		Height:      400,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		Usage:       gputypes.TextureUsageRenderAttachment,
	}
	if s.Config() != want {
		t.Errorf("Config() = %+v, want %+v", s.Config(), want)
	}
	if got := c.Config(); got == nil || got.Format != want.Format || got.Width != 600 {
		t.Errorf("canvas configuration = %+v", got)
	}
	if dc.SurfaceFormat() != want.Format {
		t.Errorf("device SurfaceFormat() = %v, want %v", dc.SurfaceFormat(), want.Format)
	}
}

func TestBindZeroSizeDoesNoDeviceWork(t *testing.T) {
	for _, size := range [][2]int{{0, 400}, {600, 0}, {0, 0}} {
		b, dc := newDevice(t)
		before := b.Counts()
		c := b.AddCanvas("hidden", size[0], size[1])

		s, err := Bind(context.Background(), dc, c)
		if s != nil {
			t.Errorf("%v: Bind() returned a surface", size)
		}
		if !errors.Is(err, failure.ErrInvalidTargetSize) {
			t.Errorf("%v: Bind() error = %v, want ErrInvalidTargetSize", size, err)
		}
		if after := b.Counts(); after.DeviceWork() != before.DeviceWork() {
			t.Errorf("%v: device work performed: before %+v, after %+v", size, before, after)
		}
		if c.Config() != nil {
			t.Errorf("%v: canvas was configured", size)
		}
	}
}

func TestSelectFormat(t *testing.T) {
	const (
		rgba     = gputypes.TextureFormatRGBA8Unorm
		rgbaSrgb = gputypes.TextureFormatRGBA8UnormSrgb
		bgra     = gputypes.TextureFormatBGRA8Unorm
		bgraSrgb = gputypes.TextureFormatBGRA8UnormSrgb
		none     = gputypes.TextureFormatUndefined
	)
	tests := []struct {
		name      string
		formats   []gputypes.TextureFormat
		preferred gputypes.TextureFormat
		explicit  gputypes.TextureFormat
		want      gputypes.TextureFormat
		wantErr   bool
	}{
		{"preferred", []gputypes.TextureFormat{rgba, bgra}, bgra, none, bgra, false},
		{"srgb fallback", []gputypes.TextureFormat{rgba, bgraSrgb}, none, none, bgraSrgb, false},
		{"unsupported preference", []gputypes.TextureFormat{rgba, rgbaSrgb}, bgra, none, rgbaSrgb, false},
		{"first format", []gputypes.TextureFormat{bgra, rgba}, none, none, bgra, false},
		{"explicit", []gputypes.TextureFormat{bgra, rgba}, bgra, rgba, rgba, false},
		{"explicit unsupported", []gputypes.TextureFormat{bgra}, bgra, rgba, none, true},
		{"no formats", nil, bgra, none, none, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectFormat(tt.formats, tt.preferred, tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("selectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("selectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectAlphaMode(t *testing.T) {
	premul := gputypes.CompositeAlphaModePremultiplied
	opaque := gputypes.CompositeAlphaModeOpaque
	if got := selectAlphaMode([]gputypes.CompositeAlphaMode{premul, opaque}); got != opaque {
		t.Errorf("selectAlphaMode() = %v, want Opaque", got)
	}
	if got := selectAlphaMode([]gputypes.CompositeAlphaMode{premul}); got != premul {
		t.Errorf("selectAlphaMode() = %v, want first mode", got)
	}
}

func TestBindUnsupportedFormat(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 10, 10)

	_, err := Bind(context.Background(), dc, c, WithFormat(gputypes.TextureFormatRGBA16Float))
	if !errors.Is(err, failure.ErrUnsupportedFormat) {
		t.Fatalf("Bind() error = %v, want ErrUnsupportedFormat", err)
	}
	// The failed bind must not keep the canvas claimed.
	bind(t, dc, c)
}

func TestBindTwiceIsBusy(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 10, 10)
	s := bind(t, dc, c)

	if _, err := Bind(context.Background(), dc, c); !errors.Is(err, failure.ErrTargetBusy) {
		t.Fatalf("second Bind() error = %v, want ErrTargetBusy", err)
	}

	s.Release()
	bind(t, dc, c)
}

func TestAcquireAfterResizeIsOutdated(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 600, 400)
	s := bind(t, dc, c)

	c.Resize(800, 600)
	before := b.Counts().Acquires
	if _, err := s.Acquire(); !errors.Is(err, failure.ErrOutdatedSurface) {
		t.Fatalf("Acquire() error = %v, want ErrOutdatedSurface", err)
	}
	if b.Counts().Acquires != before {
		t.Error("Acquire touched the backend for an outdated surface")
	}

	if err := s.Reconfigure(context.Background()); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if w, h := s.Size(); w != 800 || h != 600 {
		t.Errorf("Size() = %dx%d, want 800x600", w, h)
	}
	f, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after Reconfigure error = %v", err)
	}
	s.Discard(f)
}

func TestReconfigureRejectsZeroSize(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 600, 400)
	s := bind(t, dc, c)

	c.Resize(0, 400)
	if err := s.Reconfigure(context.Background()); !errors.Is(err, failure.ErrInvalidTargetSize) {
		t.Fatalf("Reconfigure() error = %v, want ErrInvalidTargetSize", err)
	}
	if w, h := s.Size(); w != 600 || h != 400 {
		t.Errorf("configuration changed to %dx%d", w, h)
	}
}

func TestReconfigureFormat(t *testing.T) {
	b, dc := newDevice(t)
	s := bind(t, dc, b.AddCanvas("c", 4, 4))

	if err := s.Reconfigure(context.Background(), WithFormat(gputypes.TextureFormatRGBA8Unorm)); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if s.Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v, want RGBA8Unorm", s.Format())
	}
}

func TestAcquireBackendErrors(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		kind  error
	}{
		{"outdated", gpucore.ErrSurfaceOutdated, failure.ErrOutdatedSurface},
		{"lost", gpucore.ErrSurfaceLost, failure.ErrSurfaceLost},
		{"other", errors.New("timeout"), failure.ErrSurfaceLost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, dc := newDevice(t)
			c := b.AddCanvas("c", 4, 4)
			s := bind(t, dc, c)
			c.AcquireErr = tt.cause

			_, err := s.Acquire()
			if !errors.Is(err, tt.kind) || !errors.Is(err, tt.cause) {
				t.Errorf("Acquire() error = %v, want %v wrapping %v", err, tt.kind, tt.cause)
			}
		})
	}
}

func TestPresentAndDiscard(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 4, 4)
	s := bind(t, dc, c)

	f, err := s.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := s.Present(context.Background(), f); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	s.Discard(f)
	if n := b.Counts(); n.Presents != 1 || n.Discards != 0 {
		t.Errorf("counts = %+v, want one present and no discard", n)
	}

	c.PresentErr = gpucore.ErrSurfaceLost
	f, _ = s.Acquire()
	if err := s.Present(context.Background(), f); !errors.Is(err, failure.ErrSurfaceLost) {
		t.Errorf("Present() error = %v, want ErrSurfaceLost", err)
	}
}

func TestReleaseUnconfigures(t *testing.T) {
	b, dc := newDevice(t)
	c := b.AddCanvas("c", 4, 4)
	s := bind(t, dc, c)

	s.Release()
	s.Release()
	if c.Config() != nil {
		t.Error("canvas still configured after Release")
	}
	if dc.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("device SurfaceFormat() = %v after Release", dc.SurfaceFormat())
	}
	if _, err := s.Acquire(); !errors.Is(err, failure.ErrSurfaceLost) {
		t.Errorf("Acquire() after Release error = %v, want ErrSurfaceLost", err)
	}
}
