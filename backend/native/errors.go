//go:build !(js && wasm)

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrUnsupportedFormat is returned when a canvas is configured with a
	// format it does not advertise.
	ErrUnsupportedFormat = errors.New("native: unsupported canvas format")

	// ErrCanvasSize is returned when a canvas is configured with a zero
	// dimension.
	ErrCanvasSize = errors.New("native: invalid canvas size")

	// ErrNothingPresented is returned by Snapshot before the first present.
	ErrNothingPresented = errors.New("native: no frame presented")
)
