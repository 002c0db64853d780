package backend

import (
	"errors"

	"github.com/gogpu/triangle/gpucore"
)

// Backend name constants.
const (
	// BackendNative is the name of the Pure Go backend (gogpu/wgpu) with
	// offscreen canvases.
	BackendNative = "native"
	// BackendBrowser is the name of the browser backend (navigator.gpu).
	BackendBrowser = "browser"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory returns a backend instance. Factories are called on every lookup
// and should return a shared instance when the backend holds host state.
type Factory func() gpucore.Backend
