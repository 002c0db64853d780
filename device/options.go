package device

import (
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/gpucore"
)

// Environment variables read by the default options.
const (
	EnvForceFallbackAdapter = "TRIANGLE_FORCE_FALLBACK_ADAPTER"
	EnvPowerPreference      = "TRIANGLE_POWER_PREFERENCE"
)

// Option configures device acquisition.
type Option func(*options)

type options struct {
	powerPreference gputypes.PowerPreference
	forceFallback   bool
	compatible      gpucore.Canvas
}

// defaultOptions returns the options taken from the environment.
func defaultOptions() options {
	o := options{powerPreference: gputypes.PowerPreferenceNone}
	if p, ok := ParsePowerPreference(os.Getenv(EnvPowerPreference)); ok {
		o.powerPreference = p
	}
	switch os.Getenv(EnvForceFallbackAdapter) {
	case "1", "true", "TRUE", "yes":
		o.forceFallback = true
	}
	return o
}

// WithPowerPreference sets the adapter power preference.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(o *options) {
		o.powerPreference = p
	}
}

// WithForceFallbackAdapter requests a software adapter.
func WithForceFallbackAdapter(force bool) Option {
	return func(o *options) {
		o.forceFallback = force
	}
}

// WithCompatibleCanvas requires an adapter able to present to c.
func WithCompatibleCanvas(c gpucore.Canvas) Option {
	return func(o *options) {
		o.compatible = c
	}
}

// ParsePowerPreference parses "low", "high" or "none" (case-insensitive).
// An empty string is reported as not ok.
func ParsePowerPreference(s string) (gputypes.PowerPreference, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "low-power", "lowpower":
		return gputypes.PowerPreferenceLowPower, true
	case "high", "high-performance", "highperformance":
		return gputypes.PowerPreferenceHighPerformance, true
	case "none", "default":
		return gputypes.PowerPreferenceNone, true
	default:
		return gputypes.PowerPreferenceNone, false
	}
}
