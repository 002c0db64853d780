package backend

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/triangle/gpucore"
)

// registry holds registered backends.
// Priority order for backend selection (first available wins).
// Browser > Native (a wasm build only links the browser backend).
var registry = gpucontext.NewRegistry[gpucore.Backend](
	gpucontext.WithPriority(BackendBrowser, BackendNative),
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registry.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registry.Unregister(name)
}

// Available returns a list of registered backend names.
func Available() []string {
	return registry.Available()
}

// DefaultName returns the name Default would select, or "" if none is
// registered.
func DefaultName() string {
	return registry.BestName()
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return registry.Has(name)
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) gpucore.Backend {
	return registry.Get(name)
}

// Default returns the best available backend based on priority.
// Returns nil if no backends are registered.
func Default() gpucore.Backend {
	return registry.Best()
}

// MustDefault returns the default backend or panics.
func MustDefault() gpucore.Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// Select returns the backend called name, or the default backend when name
// is empty.
func Select(name string) (gpucore.Backend, error) {
	if name == "" {
		b := Default()
		if b == nil {
			return nil, ErrBackendNotAvailable
		}
		return b, nil
	}
	b := Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
	}
	return b, nil
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// PropagateLogger passes l to every registered backend that accepts a
// logger.
func PropagateLogger(l *slog.Logger) {
	for _, name := range registry.Available() {
		if s, ok := registry.Get(name).(loggerSetter); ok {
			s.SetLogger(l)
		}
	}
}
