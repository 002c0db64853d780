// Package pipeline builds the render pipeline that draws the triangle.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
	"github.com/gogpu/triangle/shader"
)

// Pipeline is an immutable render pipeline for one target format.
type Pipeline struct {
	handle   gpucore.RenderPipeline
	modules  []gpucore.ShaderModule
	compiled *shader.Compiled
	format   gputypes.TextureFormat
	released bool
}

// Build validates program with naga and creates a render pipeline that
// renders into format.
//
// Shader failures are reported as [failure.ErrShaderCompile] with the
// compiler output in the diagnostic, before any device call is made.
func Build(ctx context.Context, dc *device.Context, format gputypes.TextureFormat, program shader.Program) (*Pipeline, error) {
	compiled, err := shader.Compile(program)
	if err != nil {
		return nil, buildFailure(err)
	}
	if format == gputypes.TextureFormatUndefined {
		return nil, failure.New(failure.Pipeline, failure.ErrPipelineFormatMismatch, "target format is undefined")
	}

	dev := dc.GPUDevice()
	vs, err := dev.CreateShaderModule(ctx, &gpucore.ShaderModuleDescriptor{
		Label: program.Label,
		WGSL:  program.Vertex.Source,
	})
	if err != nil {
		return nil, buildFailure(err)
	}
	modules := []gpucore.ShaderModule{vs}
	fs := vs
	if program.Fragment.Source != program.Vertex.Source {
		fs, err = dev.CreateShaderModule(ctx, &gpucore.ShaderModuleDescriptor{
			Label: program.Label,
			WGSL:  program.Fragment.Source,
		})
		if err != nil {
			vs.Release()
			return nil, buildFailure(err)
		}
		modules = append(modules, fs)
	}

	handle, err := dev.CreateRenderPipeline(ctx, Descriptor(program, vs, fs, format))
	if err != nil {
		releaseModules(modules)
		return nil, buildFailure(err)
	}

	logging.Logger().DebugContext(ctx, "pipeline: built",
		"label", program.Label,
		"format", format.String(),
	)
	return &Pipeline{
		handle:   handle,
		modules:  modules,
		compiled: compiled,
		format:   format,
	}, nil
}

// Descriptor returns the render pipeline state used for program: no vertex
// buffers, triangle list, counter-clockwise front faces with back faces
// culled, one sample and one color target written without blending.
func Descriptor(program shader.Program, vs, fs gpucore.ShaderModule, format gputypes.TextureFormat) *gpucore.RenderPipelineDescriptor {
	blend := gputypes.BlendStateReplace()
	return &gpucore.RenderPipelineDescriptor{
		Label:    program.Label,
		Vertex:   gpucore.ProgrammableStage{Module: vs, EntryPoint: program.Vertex.EntryPoint},
		Fragment: gpucore.ProgrammableStage{Module: fs, EntryPoint: program.Fragment.EntryPoint},
		Targets: []gputypes.ColorTargetState{{
			Format:    format,
			Blend:     &blend,
			WriteMask: gputypes.ColorWriteMaskAll,
		}},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}

// buildFailure reports compiler errors as ErrShaderCompile and any other
// device error as ErrPipelineCreate.
func buildFailure(err error) error {
	var ce *shader.CompileError
	if errors.As(err, &ce) {
		return &failure.Error{
			Component:  failure.Pipeline,
			Kind:       failure.ErrShaderCompile,
			Diagnostic: ce.Diagnostic,
			Err:        fmt.Errorf("%s stage %q", ce.Stage, ce.EntryPoint),
		}
	}
	var be *gpucore.CompileError
	if errors.As(err, &be) {
		return failure.New(failure.Pipeline, failure.ErrShaderCompile, be.Diagnostic())
	}
	return failure.Wrap(failure.Pipeline, failure.ErrPipelineCreate, err)
}

func releaseModules(modules []gpucore.ShaderModule) {
	for _, m := range modules {
		m.Release()
	}
}

// Format returns the target format the pipeline was built for.
func (p *Pipeline) Format() gputypes.TextureFormat { return p.format }

// Handle returns the backend pipeline.
func (p *Pipeline) Handle() gpucore.RenderPipeline { return p.handle }

// Program returns the validated shader program.
func (p *Pipeline) Program() *shader.Compiled { return p.compiled }

// Release releases the pipeline and its shader modules. It is safe to call
// more than once.
func (p *Pipeline) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	p.handle.Release()
	releaseModules(p.modules)
}
