// Package failure defines the tagged error values returned by every
// component of the triangle bootstrap.
//
// Each failure carries the component that produced it, a kind (one of the
// sentinel errors below), an optional diagnostic string and an optional
// underlying cause. Kinds are matched with [errors.Is]:
//
//	if errors.Is(err, failure.ErrShaderCompile) {
//		var f *failure.Error
//		errors.As(err, &f)
//		fmt.Println(f.Diagnostic)
//	}
package failure

import (
	"errors"
	"strings"
)

// Failure kinds.
var (
	// ErrNoAdapter is returned when the host exposes no compatible adapter.
	ErrNoAdapter = errors.New("no compatible graphics adapter")

	// ErrDeviceRequest is returned when the adapter refuses to create a device.
	ErrDeviceRequest = errors.New("device request refused")

	// ErrInvalidTargetSize is returned when a canvas has a zero dimension.
	ErrInvalidTargetSize = errors.New("invalid target size")

	// ErrOutdatedSurface is returned when a surface configuration no longer
	// matches its canvas.
	ErrOutdatedSurface = errors.New("surface configuration is outdated")

	// ErrSurfaceLost is returned when the next frame cannot be acquired or
	// presented. The surface must be rebound.
	ErrSurfaceLost = errors.New("surface lost")

	// ErrShaderCompile is returned when a shader stage fails to compile.
	// The compiler output is kept in [Error.Diagnostic].
	ErrShaderCompile = errors.New("shader compilation failed")

	// ErrPipelineFormatMismatch is returned when a pipeline's target format
	// differs from the surface's current format.
	ErrPipelineFormatMismatch = errors.New("pipeline format does not match surface format")

	// ErrTargetNotFound is returned when no canvas has the requested id.
	ErrTargetNotFound = errors.New("target not found")

	// ErrNotCanvas is returned when the requested element is not a canvas.
	ErrNotCanvas = errors.New("element is not a canvas")

	// ErrTargetBusy is returned when a canvas is already bound to a surface.
	ErrTargetBusy = errors.New("target already bound")

	// ErrUnsupportedFormat is returned when a requested surface format is
	// not supported by the canvas.
	ErrUnsupportedFormat = errors.New("unsupported surface format")

	// ErrSubmission is returned when recording or submitting commands fails.
	ErrSubmission = errors.New("command submission failed")

	// ErrPipelineCreate is returned when the device rejects a shader module
	// or render pipeline for a reason other than a compile error.
	ErrPipelineCreate = errors.New("pipeline creation failed")
)

// kindNames lists the kinds in matching order.
var kindNames = []struct {
	kind error
	name string
}{
	{ErrNoAdapter, "NoAdapterError"},
	{ErrDeviceRequest, "DeviceRequestError"},
	{ErrInvalidTargetSize, "InvalidTargetSizeError"},
	{ErrOutdatedSurface, "OutdatedSurfaceError"},
	{ErrSurfaceLost, "SurfaceLostError"},
	{ErrShaderCompile, "ShaderCompileError"},
	{ErrPipelineFormatMismatch, "PipelineFormatMismatchError"},
	{ErrTargetNotFound, "TargetNotFoundError"},
	{ErrNotCanvas, "NotCanvasError"},
	{ErrTargetBusy, "TargetBusyError"},
	{ErrUnsupportedFormat, "UnsupportedFormatError"},
	{ErrSubmission, "SubmissionError"},
	{ErrPipelineCreate, "PipelineCreateError"},
}

// Component names the part of the system that produced a failure.
type Component string

// Components.
const (
	Device   Component = "device"
	Surface  Component = "surface"
	Pipeline Component = "pipeline"
	Frame    Component = "frame"
	Entry    Component = "entry"
)

// Error is a tagged failure value.
type Error struct {
	// Component is the part of the system that failed.
	Component Component

	// Kind is one of the sentinel errors of this package.
	Kind error

	// Diagnostic is raw diagnostic text, such as compiler output.
	// It is reported verbatim.
	Diagnostic string

	// Err is the underlying cause, if any.
	Err error
}

// New returns a failure of the given component and kind.
func New(component Component, kind error, diagnostic string) *Error {
	return &Error{Component: component, Kind: kind, Diagnostic: diagnostic}
}

// Wrap returns a failure of the given component and kind caused by err.
func Wrap(component Component, kind error, err error) *Error {
	return &Error{Component: component, Kind: kind, Err: err}
}

// Error implements the error interface.
// The format is "component: kind: diagnostic: cause", omitting empty parts.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Component))
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Diagnostic != "" {
		b.WriteString(": ")
		b.WriteString(e.Diagnostic)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind and the cause so that [errors.Is] matches both.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindName returns the stable name of the outermost failure kind in err,
// such as "ShaderCompileError". Without a *Error in the chain, the first
// kind in declaration order that err matches is named. It returns "" if err
// carries no known kind.
func KindName(err error) string {
	var f *Error
	if errors.As(err, &f) {
		for _, k := range kindNames {
			if k.kind == f.Kind {
				return k.name
			}
		}
	}
	for _, k := range kindNames {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return ""
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var f *Error
	ok := errors.As(err, &f)
	return f, ok
}
