// Package shader holds the triangle's WGSL program and validates shader
// programs with naga before they reach a device.
//
// The reference program draws without a vertex buffer: the vertex stage
// indexes a three-entry array of clip-space positions with
// @builtin(vertex_index), and the fragment stage returns one constant color.
package shader

import (
	_ "embed"

	"github.com/gogpu/gputypes"
)

//go:embed triangle.wgsl
var triangleSource string

// Entry point names of the reference program.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Stage identifies a programmable pipeline stage.
type Stage int

// Stages.
const (
	StageVertex Stage = iota
	StageFragment
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Entry is one stage of a program: WGSL source plus its entry point.
type Entry struct {
	Source     string
	EntryPoint string
}

// Program is a vertex/fragment shader pair.
type Program struct {
	Label    string
	Vertex   Entry
	Fragment Entry
}

// Reference returns the embedded triangle program.
func Reference() Program {
	return Program{
		Label:    "triangle",
		Vertex:   Entry{Source: triangleSource, EntryPoint: VertexEntryPoint},
		Fragment: Entry{Source: triangleSource, EntryPoint: FragmentEntryPoint},
	}
}

// Source returns the embedded WGSL text.
func Source() string { return triangleSource }

// FragmentColor is the constant written by the reference fragment stage.
var FragmentColor = gputypes.Color{R: 0.3, G: 0.2, B: 0.1, A: 1.0}

// Vertex is one corner of the triangle.
type Vertex struct {
	Position [2]float32
	Color    [3]float32
}

// Vertices is the triangle geometry in clip space. The positions are the
// ones hard-coded in the vertex stage. The colors are not consumed by the
// reference program, which shades flat with [FragmentColor].
var Vertices = [3]Vertex{
	{Position: [2]float32{0.0, 0.5}, Color: [3]float32{1, 0, 0}},
	{Position: [2]float32{-0.5, -0.5}, Color: [3]float32{0, 1, 0}},
	{Position: [2]float32{0.5, -0.5}, Color: [3]float32{0, 0, 1}},
}

// VertexCount is the number of vertices issued by the single draw call.
const VertexCount = uint32(len(Vertices))
