// Package backend selects the WebGPU implementation the triangle runs on.
//
// Backends register themselves from init() functions and are selected at
// runtime. Importing a backend package is enough to make it available:
//
//	import _ "github.com/gogpu/triangle/backend/native"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get(backend.BackendNative)
//
// # Available Backends
//
//   - "browser": navigator.gpu on a web page (GOOS=js GOARCH=wasm).
//     Canvases are resolved from the page document.
//   - "native": gogpu/wgpu with offscreen canvases held by a
//     native.Document. Used by tests and the trirender command.
//
// When both are linked, the browser backend wins.
package backend
