// Package browser provides the triangle backend for js/wasm builds. It talks
// to the page's WebGPU implementation through navigator.gpu and resolves
// canvases with document.getElementById.
//
// The package registers itself as the "browser" backend on import, and that
// backend takes priority over every other when both are linked:
//
//	import _ "github.com/gogpu/triangle/backend/browser"
//
// Frames are presented by the browser when control returns to the event
// loop, so Canvas.Present only validates the frame it is handed.
package browser
