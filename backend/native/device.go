//go:build !(js && wasm)

package native

import (
	"context"
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/triangle/gpucore"
)

// Device wraps a wgpu device.
type Device struct {
	device *wgpu.Device

	// packedCopies is set for the software adapter, whose texture-to-buffer
	// copies ignore BytesPerRow and write rows back to back.
	packedCopies bool
}

// WGPU returns the underlying device.
func (d *Device) WGPU() *wgpu.Device { return d.device }

// Queue implements gpucore.Device. It returns nil when the device has no
// HAL queue (a mock adapter).
func (d *Device) Queue() gpucore.Queue {
	q := d.device.Queue()
	if q == nil {
		return nil
	}
	return &Queue{queue: q}
}

// CreateShaderModule implements gpucore.Device.
func (d *Device) CreateShaderModule(_ context.Context, desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSL:  desc.WGSL,
	})
	if err != nil {
		return nil, &gpucore.CompileError{Label: desc.Label, Messages: []string{err.Error()}}
	}
	return &ShaderModule{module: m}, nil
}

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(_ context.Context, desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipeline, error) {
	vs, ok := desc.Vertex.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("vertex module: %w", gpucore.ErrForeignObject)
	}
	fs, ok := desc.Fragment.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("fragment module: %w", gpucore.ErrForeignObject)
	}

	layout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: desc.Label + " layout",
	})
	if err != nil {
		return nil, fmt.Errorf("native: create pipeline layout: %w", err)
	}
	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: desc.Vertex.EntryPoint,
		},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets:    desc.Targets,
		},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("native: create render pipeline: %w", err)
	}
	return &RenderPipeline{pipeline: p, layout: layout}, nil
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	e, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	return &CommandEncoder{encoder: e}, nil
}

// Release implements gpucore.Device.
func (d *Device) Release() { d.device.Release() }

// ShaderModule wraps a wgpu shader module.
type ShaderModule struct {
	module *wgpu.ShaderModule
}

// Release implements gpucore.ShaderModule.
func (m *ShaderModule) Release() { m.module.Release() }

// RenderPipeline wraps a wgpu render pipeline and its empty layout.
type RenderPipeline struct {
	pipeline *wgpu.RenderPipeline
	layout   *wgpu.PipelineLayout
}

// Release implements gpucore.RenderPipeline.
func (p *RenderPipeline) Release() {
	p.pipeline.Release()
	p.layout.Release()
}

// CommandEncoder wraps a wgpu command encoder.
type CommandEncoder struct {
	encoder *wgpu.CommandEncoder
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *CommandEncoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) (gpucore.RenderPass, error) {
	attachments := make([]wgpu.RenderPassColorAttachment, len(desc.ColorAttachments))
	for i, a := range desc.ColorAttachments {
		view, ok := a.View.(*wgpu.TextureView)
		if !ok {
			return nil, fmt.Errorf("color attachment %d: %w", i, gpucore.ErrForeignObject)
		}
		attachments[i] = wgpu.RenderPassColorAttachment{
			View:       view,
			LoadOp:     a.LoadOp,
			StoreOp:    a.StoreOp,
			ClearValue: a.ClearValue,
		}
	}
	pass, err := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            desc.Label,
		ColorAttachments: attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("native: begin render pass: %w", err)
	}
	return &RenderPass{pass: pass}, nil
}

// Finish implements gpucore.CommandEncoder.
func (e *CommandEncoder) Finish() (gpucore.CommandBuffer, error) {
	cb, err := e.encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("native: finish: %w", err)
	}
	return cb, nil
}

// Discard implements gpucore.CommandEncoder.
func (e *CommandEncoder) Discard() { e.encoder.DiscardEncoding() }

// RenderPass wraps a wgpu render pass encoder.
type RenderPass struct {
	pass *wgpu.RenderPassEncoder
}

// SetPipeline implements gpucore.RenderPass. Pipelines from another backend
// are ignored; the pass then fails on End.
func (p *RenderPass) SetPipeline(rp gpucore.RenderPipeline) {
	if np, ok := rp.(*RenderPipeline); ok {
		p.pass.SetPipeline(np.pipeline)
	}
}

// Draw implements gpucore.RenderPass.
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// End implements gpucore.RenderPass.
func (p *RenderPass) End() error { return p.pass.End() }

// Queue wraps a wgpu queue.
type Queue struct {
	queue *wgpu.Queue
}

// Submit implements gpucore.Queue.
func (q *Queue) Submit(_ context.Context, buffers ...gpucore.CommandBuffer) error {
	cbs := make([]*wgpu.CommandBuffer, 0, len(buffers))
	for i, b := range buffers {
		cb, ok := b.(*wgpu.CommandBuffer)
		if !ok {
			return fmt.Errorf("command buffer %d: %w", i, gpucore.ErrForeignObject)
		}
		cbs = append(cbs, cb)
	}
	if _, err := q.queue.Submit(cbs...); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	return nil
}
