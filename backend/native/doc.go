// Package native provides the triangle backend on top of gogpu/wgpu.
//
// Canvases live in a [Document], an in-process stand-in for a web page:
// each canvas is an offscreen render target that keeps the last presented
// frame as an image. The package registers itself as the "native" backend on
// import:
//
//	import _ "github.com/gogpu/triangle/backend/native"
//
//	native.Default().Document().AddCanvas("canvas-a", 600, 400)
//
// Rendering uses whatever adapter wgpu selects. Set ForceFallbackAdapter
// (or TRIANGLE_FORCE_FALLBACK_ADAPTER=1) to render on the CPU with the
// software HAL, which this package links in.
package native
