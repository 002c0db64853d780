// Package triangle draws one colored triangle into a canvas with WebGPU.
//
// # Overview
//
// triangle is the smallest complete WebGPU program: it acquires a device,
// binds a canvas as a presentable surface, builds a render pipeline from an
// embedded WGSL program and draws a single frame. It runs in the browser
// (GOOS=js GOARCH=wasm, see cmd/triangle-wasm) and natively against
// offscreen canvases through gogpu/wgpu (see cmd/trirender).
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/triangle"
//		"github.com/gogpu/triangle/backend/native"
//	)
//
//	native.Default().Document().AddCanvas("canvas-a", 600, 400)
//
//	app := triangle.New()
//	if err := app.Initialize(ctx); err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(ctx, "canvas-a"); err != nil {
//		log.Fatal(err)
//	}
//
// # Two-phase start
//
// Initialize selects the backend and must complete before Run. Calling Run
// or Open on an uninitialized App is a programming error and panics.
//
// # Errors
//
// Every failure is a *failure.Error naming the component that failed and a
// kind matched with errors.Is (failure.ErrInvalidTargetSize,
// failure.ErrShaderCompile, ...). Nothing is retried.
//
// # Architecture
//
// The library is organized into:
//   - Components: device, surface, pipeline, frame
//   - Shader program: shader (WGSL source, naga validation, geometry)
//   - GPU seam: gpucore (interfaces), backend (registry)
//   - Backends: backend/native (gogpu/wgpu), backend/browser (navigator.gpu)
package triangle
