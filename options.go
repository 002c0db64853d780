package triangle

import (
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/frame"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/shader"
	"github.com/gogpu/triangle/surface"
)

// EnvBackend names the backend Initialize selects when no option does.
const EnvBackend = "TRIANGLE_BACKEND"

// Option configures an App during creation.
//
// Example:
//
//	// Default backend and the embedded program
//	app := triangle.New()
//
//	// Software rendering on the native backend
//	app := triangle.New(
//		triangle.WithBackendName("native"),
//		triangle.WithForceFallbackAdapter(true),
//	)
type Option func(*options)

// options holds optional configuration for App creation.
type options struct {
	backend     gpucore.Backend
	backendName string
	program     shader.Program
	device      []device.Option
	surface     []surface.Option
	frame       []frame.Option
}

// defaultOptions returns the default app options.
func defaultOptions() options {
	return options{
		backendName: os.Getenv(EnvBackend), // "" selects by registry priority
		program:     shader.Reference(),
	}
}

// WithBackend uses b instead of a registered backend.
func WithBackend(b gpucore.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithProgram replaces the embedded shader program.
func WithProgram(p shader.Program) Option {
	return func(o *options) {
		o.program = p
	}
}

// WithPowerPreference sets the adapter power preference.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(o *options) {
		o.device = append(o.device, device.WithPowerPreference(p))
	}
}

// WithForceFallbackAdapter requests a software adapter.
func WithForceFallbackAdapter(force bool) Option {
	return func(o *options) {
		o.device = append(o.device, device.WithForceFallbackAdapter(force))
	}
}

// WithFormat requests an explicit surface format.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.surface = append(o.surface, surface.WithFormat(f))
	}
}

// WithClearColor sets the background color of each frame.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.frame = append(o.frame, frame.WithClearColor(c))
	}
}
