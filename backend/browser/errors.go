//go:build js && wasm

package browser

import "errors"

// Package errors for the browser backend.
var (
	// ErrNoWebGPU is returned when navigator.gpu is missing.
	ErrNoWebGPU = errors.New("browser: WebGPU is not supported by this browser")

	// ErrNoContext is returned when a canvas refuses a "webgpu" context,
	// usually because it already has a 2d or webgl context.
	ErrNoContext = errors.New("browser: canvas has no webgpu context")

	// ErrUnsupportedFormat is returned for texture formats the backend cannot
	// name in WebGPU.
	ErrUnsupportedFormat = errors.New("browser: unsupported texture format")
)
