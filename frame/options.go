// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "github.com/gogpu/gputypes"

// Option configures a Renderer.
type Option func(*options)

type options struct {
	clear gputypes.Color
	label string
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		clear: DefaultClearColor,
		label: "triangle frame",
	}
}

// WithClearColor sets the color the render pass clears to.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clear = c
	}
}

// WithLabel sets the debug label of encoders and render passes.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
