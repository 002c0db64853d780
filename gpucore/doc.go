// Package gpucore defines the backend-neutral GPU seam used by the triangle
// components.
//
// The device, surface, pipeline and frame packages are written once against
// the interfaces in this package. Thin backends translate them to a concrete
// WebGPU implementation:
//
//	          +------------------------------------+
//	          | device / surface / pipeline / frame |
//	          +------------------+-----------------+
//	                             |
//	                      gpucore interfaces
//	                             |
//	         +-------------------+-------------------+
//	         |                                       |
//	+--------v---------+                   +---------v--------+
//	|  backend/native  |                   | backend/browser  |
//	|   gogpu/wgpu     |                   | navigator.gpu    |
//	| offscreen canvas |                   |  (syscall/js)    |
//	+------------------+                   +------------------+
//
// # Objects
//
// A [Backend] resolves canvases by identifier and hands out [Adapter]s.
// An adapter creates a [Device], which owns a single [Queue] and creates
// shader modules, render pipelines and command encoders. A [Canvas] is a
// presentable target: it is configured with a [SurfaceConfiguration] and
// yields one [SurfaceTexture] per frame.
//
// # Errors
//
// Backends report conditions the components must tell apart with the
// sentinel errors of this package ([ErrNoAdapter], [ErrSurfaceOutdated],
// [ErrSurfaceLost], ...), wrapped with context via fmt.Errorf and %w.
// Shader compiler diagnostics are reported as [*CompileError].
package gpucore
