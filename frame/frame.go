// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame records and submits the single draw of a triangle frame.
package frame

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
	"github.com/gogpu/triangle/pipeline"
	"github.com/gogpu/triangle/shader"
	"github.com/gogpu/triangle/surface"
)

// State is the renderer's position in the frame cycle.
type State int

// Frame states.
const (
	Idle State = iota
	Acquired
	Submitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquired:
		return "acquired"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DefaultClearColor is the background the render pass clears to.
var DefaultClearColor = gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

// Renderer draws frames. The zero value is not usable; call New.
//
// A Renderer is NOT thread-safe.
type Renderer struct {
	clear  gputypes.Color
	label  string
	state  State
	frames uint64
}

// New returns a renderer in the Idle state.
func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{clear: o.clear, label: o.label}
}

// State returns the current state. It is Idle between draws.
func (r *Renderer) State() State { return r.state }

// Frames returns the number of frames presented.
func (r *Renderer) Frames() uint64 { return r.frames }

// ClearColor returns the color the render pass clears to.
func (r *Renderer) ClearColor() gputypes.Color { return r.clear }

func (r *Renderer) transition(ctx context.Context, to State) {
	logging.Logger().DebugContext(ctx, "frame: state", "from", r.state.String(), "to", to.String())
	r.state = to
}

// Draw renders one frame into s with p and submits it to queue.
//
// The pipeline format is checked first: a mismatch fails with
// [failure.ErrPipelineFormatMismatch] before a frame is acquired. A frame
// that cannot be acquired fails with [failure.ErrSurfaceLost] wrapping the
// surface error. Any failure after acquisition discards the frame.
func (r *Renderer) Draw(ctx context.Context, s *surface.Surface, p *pipeline.Pipeline, queue gpucore.Queue) error {
	if p.Format() != s.Format() {
		return failure.New(failure.Frame, failure.ErrPipelineFormatMismatch,
			fmt.Sprintf("pipeline targets %s, surface is %s", p.Format(), s.Format()))
	}

	f, err := s.Acquire()
	if err != nil {
		return failure.Wrap(failure.Frame, failure.ErrSurfaceLost, err)
	}
	r.transition(ctx, Acquired)

	if err := r.record(ctx, s, p, queue, f); err != nil {
		s.Discard(f)
		r.transition(ctx, Idle)
		return err
	}
	r.transition(ctx, Submitted)

	if err := s.Present(ctx, f); err != nil {
		r.transition(ctx, Idle)
		return failure.Wrap(failure.Frame, failure.ErrSurfaceLost, err)
	}
	r.frames++
	r.transition(ctx, Idle)
	return nil
}

func (r *Renderer) record(ctx context.Context, s *surface.Surface, p *pipeline.Pipeline, queue gpucore.Queue, f *surface.Frame) error {
	enc, err := s.Device().GPUDevice().CreateCommandEncoder(r.label)
	if err != nil {
		return failure.Wrap(failure.Frame, failure.ErrSubmission, fmt.Errorf("create encoder: %w", err))
	}

	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		Label: r.label,
		ColorAttachments: []gpucore.ColorAttachment{{
			View:       f.View(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clear,
		}},
	})
	if err != nil {
		enc.Discard()
		return failure.Wrap(failure.Frame, failure.ErrSubmission, fmt.Errorf("begin render pass: %w", err))
	}
	pass.SetPipeline(p.Handle())
	pass.Draw(shader.VertexCount, 1, 0, 0)
	if err := pass.End(); err != nil {
		enc.Discard()
		return failure.Wrap(failure.Frame, failure.ErrSubmission, fmt.Errorf("end render pass: %w", err))
	}

	cmd, err := enc.Finish()
	if err != nil {
		return failure.Wrap(failure.Frame, failure.ErrSubmission, fmt.Errorf("finish: %w", err))
	}
	if err := queue.Submit(ctx, cmd); err != nil {
		cmd.Release()
		return failure.Wrap(failure.Frame, failure.ErrSubmission, fmt.Errorf("submit: %w", err))
	}
	return nil
}
