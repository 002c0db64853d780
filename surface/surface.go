// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
)

// Configuration is the presentation configuration derived from a canvas.
// It is invalid once the canvas is resized.
type Configuration struct {
	Format      gputypes.TextureFormat
	Width       uint32
	Height      uint32
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
	Usage       gputypes.TextureUsage
}

// Surface is a canvas configured for presentation.
//
// Surfaces are NOT thread-safe. A surface is owned by one invocation.
type Surface struct {
	dc       *device.Context
	canvas   gpucore.Canvas
	opts     options
	config   Configuration
	released bool
}

// claims holds the canvases currently bound to a surface.
var (
	claimsMu sync.Mutex
	claims   = make(map[gpucore.Canvas]struct{})
)

func claim(c gpucore.Canvas) bool {
	claimsMu.Lock()
	defer claimsMu.Unlock()
	if _, busy := claims[c]; busy {
		return false
	}
	claims[c] = struct{}{}
	return true
}

func unclaim(c gpucore.Canvas) {
	claimsMu.Lock()
	delete(claims, c)
	claimsMu.Unlock()
}

// Bind configures canvas for presentation with dc.
//
// The canvas size is checked before anything else: a zero width or height
// fails with [failure.ErrInvalidTargetSize] without any device work. A canvas
// already bound to another surface fails with [failure.ErrTargetBusy].
func Bind(ctx context.Context, dc *device.Context, canvas gpucore.Canvas, opts ...Option) (*Surface, error) {
	w, h := canvas.PixelSize()
	if err := CheckSize(canvas, w, h); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if !claim(canvas) {
		return nil, failure.New(failure.Surface, failure.ErrTargetBusy,
			fmt.Sprintf("canvas %q is bound to another surface", canvas.ID()))
	}

	s := &Surface{dc: dc, canvas: canvas, opts: o}
	if err := s.configure(ctx, w, h); err != nil {
		unclaim(canvas)
		return nil, err
	}
	return s, nil
}

// CheckSize fails with [failure.ErrInvalidTargetSize] if w or h, the pixel
// size of canvas, is zero.
func CheckSize(canvas gpucore.Canvas, w, h int) error {
	if w <= 0 || h <= 0 {
		return failure.New(failure.Surface, failure.ErrInvalidTargetSize,
			fmt.Sprintf("canvas %q is %dx%d", canvas.ID(), w, h))
	}
	return nil
}

func (s *Surface) configure(ctx context.Context, w, h int) error {
	caps := s.canvas.Capabilities()
	format, err := selectFormat(caps.Formats, s.canvas.PreferredFormat(), s.opts.format)
	if err != nil {
		return failure.Wrap(failure.Surface, failure.ErrUnsupportedFormat,
			fmt.Errorf("canvas %q: %w", s.canvas.ID(), err))
	}

	cfg := Configuration{
		Format:      format,
		Width:       uint32(w),
		Height:      uint32(h),
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   selectAlphaMode(caps.AlphaModes),
		Usage:       gputypes.TextureUsageRenderAttachment,
	}
	err = s.canvas.Configure(s.dc.GPUDevice(), &gpucore.SurfaceConfiguration{
		Format:      cfg.Format,
		Usage:       cfg.Usage,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: cfg.PresentMode,
		AlphaMode:   cfg.AlphaMode,
	})
	if err != nil {
		return failure.Wrap(failure.Surface, failure.ErrSurfaceLost,
			fmt.Errorf("configure canvas %q: %w", s.canvas.ID(), err))
	}

	s.config = cfg
	s.dc.SetSurfaceFormat(format)
	logging.Logger().InfoContext(ctx, "surface: configured",
		"canvas", s.canvas.ID(),
		"format", format.String(),
		"width", w,
		"height", h,
		"alpha", cfg.AlphaMode.String(),
	)
	return nil
}

// selectFormat picks the explicit format if given, otherwise the preferred
// format, otherwise the first sRGB format, otherwise the first format.
func selectFormat(formats []gputypes.TextureFormat, preferred, explicit gputypes.TextureFormat) (gputypes.TextureFormat, error) {
	if len(formats) == 0 {
		return gputypes.TextureFormatUndefined, errors.New("no supported formats")
	}
	if explicit != gputypes.TextureFormatUndefined {
		if containsFormat(formats, explicit) {
			return explicit, nil
		}
		return gputypes.TextureFormatUndefined, fmt.Errorf("format %s not in %v", explicit, formats)
	}
	if preferred != gputypes.TextureFormatUndefined && containsFormat(formats, preferred) {
		return preferred, nil
	}
	for _, f := range formats {
		if f.IsSrgb() {
			return f, nil
		}
	}
	return formats[0], nil
}

func containsFormat(formats []gputypes.TextureFormat, f gputypes.TextureFormat) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

func selectAlphaMode(modes []gputypes.CompositeAlphaMode) gputypes.CompositeAlphaMode {
	for _, m := range modes {
		if m == gputypes.CompositeAlphaModeOpaque {
			return m
		}
	}
	if len(modes) > 0 {
		return modes[0]
	}
	return gputypes.CompositeAlphaModeOpaque
}

// Canvas returns the bound canvas.
func (s *Surface) Canvas() gpucore.Canvas { return s.canvas }

// Device returns the device context the surface is bound to.
func (s *Surface) Device() *device.Context { return s.dc }

// Config returns the current configuration.
func (s *Surface) Config() Configuration { return s.config }

// Format returns the configured format.
func (s *Surface) Format() gputypes.TextureFormat { return s.config.Format }

// Size returns the configured size in physical pixels.
func (s *Surface) Size() (width, height uint32) { return s.config.Width, s.config.Height }

// Reconfigure re-reads the canvas size and configures the canvas again,
// applying opts on top of the options given to Bind.
func (s *Surface) Reconfigure(ctx context.Context, opts ...Option) error {
	if s.released {
		return failure.New(failure.Surface, failure.ErrSurfaceLost, "surface released")
	}
	w, h := s.canvas.PixelSize()
	if err := CheckSize(s.canvas, w, h); err != nil {
		return err
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s.configure(ctx, w, h)
}

// Frame is the presentable image of one draw. It must be presented or
// discarded before the next Acquire.
type Frame struct {
	tex  gpucore.SurfaceTexture
	done bool
}

// View returns the render target view of the frame.
func (f *Frame) View() gpucore.TextureView { return f.tex.View() }

// Acquire returns the next frame.
//
// If the canvas size differs from the configuration it fails with
// [failure.ErrOutdatedSurface] without touching the backend.
func (s *Surface) Acquire() (*Frame, error) {
	if s.released {
		return nil, failure.New(failure.Surface, failure.ErrSurfaceLost, "surface released")
	}
	w, h := s.canvas.PixelSize()
	if uint32(max(w, 0)) != s.config.Width || uint32(max(h, 0)) != s.config.Height {
		return nil, failure.New(failure.Surface, failure.ErrOutdatedSurface,
			fmt.Sprintf("canvas %q is %dx%d, configured for %dx%d",
				s.canvas.ID(), w, h, s.config.Width, s.config.Height))
	}

	tex, err := s.canvas.CurrentTexture()
	if err != nil {
		if errors.Is(err, gpucore.ErrSurfaceOutdated) {
			return nil, failure.Wrap(failure.Surface, failure.ErrOutdatedSurface, err)
		}
		return nil, failure.Wrap(failure.Surface, failure.ErrSurfaceLost, err)
	}
	return &Frame{tex: tex}, nil
}

// Present hands f to the presentation engine.
func (s *Surface) Present(ctx context.Context, f *Frame) error {
	if f.done {
		return failure.New(failure.Surface, failure.ErrSurfaceLost, "frame already presented or discarded")
	}
	f.done = true
	if err := s.canvas.Present(ctx, f.tex); err != nil {
		return failure.Wrap(failure.Surface, failure.ErrSurfaceLost, err)
	}
	return nil
}

// Discard drops f without presenting it.
func (s *Surface) Discard(f *Frame) {
	if f == nil || f.done {
		return
	}
	f.done = true
	s.canvas.Discard(f.tex)
}

// Release unconfigures the canvas and drops the claim on it. It is safe to
// call more than once.
func (s *Surface) Release() {
	if s == nil || s.released {
		return
	}
	s.released = true
	s.canvas.Unconfigure()
	unclaim(s.canvas)
	s.dc.SetSurfaceFormat(gputypes.TextureFormatUndefined)
	logging.Logger().Debug("surface: released", "canvas", s.canvas.ID())
}
