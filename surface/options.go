// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "github.com/gogpu/gputypes"

// Option configures a Surface.
type Option func(*options)

type options struct {
	format gputypes.TextureFormat
}

// defaultOptions returns the default surface options.
func defaultOptions() options {
	return options{
		format: gputypes.TextureFormatUndefined, // canvas preference
	}
}

// WithFormat requests an explicit surface format. The canvas must support
// it. TextureFormatUndefined restores automatic selection.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.format = f
	}
}
