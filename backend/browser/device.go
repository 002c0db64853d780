//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/gogpu/triangle/gpucore"
)

// Queue implements gpucore.Device.
func (d *Device) Queue() gpucore.Queue {
	q := d.device.Get("queue")
	if !exists(q) {
		return nil
	}
	return &Queue{queue: q}
}

// CreateShaderModule implements gpucore.Device. The module's compilation
// info is awaited so that errors surface here rather than at pipeline
// creation.
func (d *Device) CreateShaderModule(ctx context.Context, desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModule, error) {
	m := d.device.Call("createShaderModule", map[string]any{
		"label": desc.Label,
		"code":  desc.WGSL,
	})
	if fn := m.Get("getCompilationInfo"); fn.Type() == js.TypeFunction {
		info, err := await(ctx, m.Call("getCompilationInfo"))
		if err != nil {
			return nil, fmt.Errorf("browser: shader module %s: %w", desc.Label, err)
		}
		if msgs := compileErrors(info); len(msgs) > 0 {
			return nil, &gpucore.CompileError{Label: desc.Label, Messages: msgs}
		}
	}
	return &ShaderModule{module: m}, nil
}

// compileErrors returns the text of each error message in a
// GPUCompilationInfo, prefixed with its line and column.
func compileErrors(info js.Value) []string {
	if !exists(info) {
		return nil
	}
	list := info.Get("messages")
	if !exists(list) {
		return nil
	}
	var msgs []string
	for i := 0; i < list.Length(); i++ {
		m := list.Index(i)
		if m.Get("type").String() != "error" {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%d:%d: %s",
			m.Get("lineNum").Int(), m.Get("linePos").Int(), m.Get("message").String()))
	}
	return msgs
}

// CreateRenderPipeline implements gpucore.Device. Validation errors are
// collected with an error scope.
func (d *Device) CreateRenderPipeline(ctx context.Context, desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipeline, error) {
	vs, ok := desc.Vertex.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("browser: vertex module: %w", gpucore.ErrForeignObject)
	}
	fs, ok := desc.Fragment.Module.(*ShaderModule)
	if !ok {
		return nil, fmt.Errorf("browser: fragment module: %w", gpucore.ErrForeignObject)
	}

	targets := make([]any, 0, len(desc.Targets))
	for _, t := range desc.Targets {
		name, err := formatName(t.Format)
		if err != nil {
			return nil, err
		}
		target := map[string]any{
			"format":    name,
			"writeMask": uint32(t.WriteMask),
		}
		if t.Blend != nil {
			target["blend"] = map[string]any{
				"color": blendComponent(t.Blend.Color),
				"alpha": blendComponent(t.Blend.Alpha),
			}
		}
		targets = append(targets, target)
	}

	count := desc.Multisample.Count
	if count == 0 {
		count = 1
	}
	pd := map[string]any{
		"label":  desc.Label,
		"layout": "auto",
		"vertex": map[string]any{
			"module":     vs.module,
			"entryPoint": desc.Vertex.EntryPoint,
		},
		"fragment": map[string]any{
			"module":     fs.module,
			"entryPoint": desc.Fragment.EntryPoint,
			"targets":    targets,
		},
		"primitive": map[string]any{
			"topology":  topologyName(desc.Primitive.Topology),
			"frontFace": frontFaceName(desc.Primitive.FrontFace),
			"cullMode":  cullModeName(desc.Primitive.CullMode),
		},
		"multisample": map[string]any{
			"count": count,
			"mask":  float64(desc.Multisample.Mask),
		},
	}

	d.device.Call("pushErrorScope", "validation")
	p := d.device.Call("createRenderPipeline", pd)
	scopeErr, err := await(ctx, d.device.Call("popErrorScope"))
	if err != nil {
		return nil, fmt.Errorf("browser: render pipeline %s: %w", desc.Label, err)
	}
	if exists(scopeErr) {
		return nil, fmt.Errorf("browser: render pipeline %s: %w", desc.Label, jsError(scopeErr))
	}
	return &RenderPipeline{pipeline: p}, nil
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(label string) (gpucore.CommandEncoder, error) {
	enc := d.device.Call("createCommandEncoder", map[string]any{"label": label})
	if !exists(enc) {
		return nil, fmt.Errorf("browser: create command encoder %s failed", label)
	}
	return &CommandEncoder{encoder: enc}, nil
}

// Release implements gpucore.Device.
func (d *Device) Release() {
	if exists(d.device) {
		d.device.Call("destroy")
	}
}

// JSValue returns the underlying GPUDevice.
func (d *Device) JSValue() js.Value { return d.device }

// ShaderModule wraps a GPUShaderModule.
type ShaderModule struct {
	module js.Value
}

// Release implements gpucore.ShaderModule. Shader modules are garbage
// collected.
func (m *ShaderModule) Release() {}

// RenderPipeline wraps a GPURenderPipeline.
type RenderPipeline struct {
	pipeline js.Value
}

// Release implements gpucore.RenderPipeline. Pipelines are garbage
// collected.
func (p *RenderPipeline) Release() {}

// CommandEncoder wraps a GPUCommandEncoder.
type CommandEncoder struct {
	encoder js.Value
}

// BeginRenderPass implements gpucore.CommandEncoder.
func (e *CommandEncoder) BeginRenderPass(desc *gpucore.RenderPassDescriptor) (gpucore.RenderPass, error) {
	attachments := make([]any, 0, len(desc.ColorAttachments))
	for i, ca := range desc.ColorAttachments {
		view, ok := ca.View.(js.Value)
		if !ok {
			return nil, fmt.Errorf("browser: color attachment %d: %w", i, gpucore.ErrForeignObject)
		}
		attachments = append(attachments, map[string]any{
			"view":    view,
			"loadOp":  loadOpName(ca),
			"storeOp": storeOpName(ca),
			"clearValue": map[string]any{
				"r": ca.ClearValue.R,
				"g": ca.ClearValue.G,
				"b": ca.ClearValue.B,
				"a": ca.ClearValue.A,
			},
		})
	}
	pass := e.encoder.Call("beginRenderPass", map[string]any{
		"label":            desc.Label,
		"colorAttachments": attachments,
	})
	return &RenderPass{pass: pass}, nil
}

// Finish implements gpucore.CommandEncoder.
func (e *CommandEncoder) Finish() (gpucore.CommandBuffer, error) {
	return &CommandBuffer{buffer: e.encoder.Call("finish")}, nil
}

// CommandBuffer wraps a GPUCommandBuffer.
type CommandBuffer struct {
	buffer js.Value
}

// Release implements gpucore.CommandBuffer. Command buffers are garbage
// collected.
func (cb *CommandBuffer) Release() {}

// Discard implements gpucore.CommandEncoder. An unfinished encoder is
// dropped by the garbage collector.
func (e *CommandEncoder) Discard() {}

// RenderPass wraps a GPURenderPassEncoder.
type RenderPass struct {
	pass js.Value
}

// SetPipeline implements gpucore.RenderPass.
func (p *RenderPass) SetPipeline(rp gpucore.RenderPipeline) {
	if bp, ok := rp.(*RenderPipeline); ok {
		p.pass.Call("setPipeline", bp.pipeline)
	}
}

// Draw implements gpucore.RenderPass.
func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Call("draw", vertexCount, instanceCount, firstVertex, firstInstance)
}

// End implements gpucore.RenderPass.
func (p *RenderPass) End() error {
	p.pass.Call("end")
	return nil
}

// Queue wraps a GPUQueue.
type Queue struct {
	queue js.Value
}

// Submit implements gpucore.Queue.
func (q *Queue) Submit(_ context.Context, buffers ...gpucore.CommandBuffer) error {
	list := make([]any, 0, len(buffers))
	for i, b := range buffers {
		cb, ok := b.(*CommandBuffer)
		if !ok {
			return fmt.Errorf("browser: command buffer %d: %w", i, gpucore.ErrForeignObject)
		}
		list = append(list, cb.buffer)
	}
	q.queue.Call("submit", list)
	return nil
}
