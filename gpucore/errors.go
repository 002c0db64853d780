package gpucore

import (
	"errors"
	"strings"
)

// Backend errors.
var (
	// ErrNoAdapter is returned when no adapter matches the request.
	ErrNoAdapter = errors.New("gpucore: no adapter available")

	// ErrNoQueue is returned when a device exposes no submission queue.
	ErrNoQueue = errors.New("gpucore: device has no queue")

	// ErrCanvasNotFound is returned when no element has the requested id.
	ErrCanvasNotFound = errors.New("gpucore: canvas not found")

	// ErrNotCanvas is returned when the element is not a canvas.
	ErrNotCanvas = errors.New("gpucore: element is not a canvas")

	// ErrNoDocument is returned when the host has no document to search.
	ErrNoDocument = errors.New("gpucore: no document")

	// ErrSurfaceOutdated is returned when the canvas configuration no
	// longer matches the canvas.
	ErrSurfaceOutdated = errors.New("gpucore: surface outdated")

	// ErrSurfaceLost is returned when the canvas can no longer present.
	ErrSurfaceLost = errors.New("gpucore: surface lost")

	// ErrNotConfigured is returned when a canvas is used before Configure.
	ErrNotConfigured = errors.New("gpucore: canvas not configured")

	// ErrForeignObject is returned when an object from another backend is
	// passed to a backend.
	ErrForeignObject = errors.New("gpucore: object belongs to another backend")
)

// CompileError carries shader compiler messages reported by a backend.
type CompileError struct {
	Label    string
	Messages []string
}

func (e *CompileError) Error() string {
	return "gpucore: shader module " + e.Label + ": " + e.Diagnostic()
}

// Diagnostic returns the compiler messages joined by newlines.
func (e *CompileError) Diagnostic() string {
	return strings.Join(e.Messages, "\n")
}
