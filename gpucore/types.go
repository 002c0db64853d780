package gpucore

import (
	"context"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Backend is a WebGPU implementation together with the document that holds
// its presentable targets.
type Backend interface {
	// Name returns the backend identifier (e.g., "native", "browser").
	Name() string

	// Canvas resolves a presentable target by identifier.
	// Returns ErrCanvasNotFound or ErrNotCanvas.
	Canvas(id string) (Canvas, error)

	// RequestAdapter selects an adapter. Returns ErrNoAdapter when the host
	// exposes none matching opts.
	RequestAdapter(ctx context.Context, opts *AdapterOptions) (Adapter, error)
}

// AdapterOptions controls adapter selection.
type AdapterOptions struct {
	PowerPreference gputypes.PowerPreference

	// ForceFallbackAdapter selects a software adapter.
	ForceFallbackAdapter bool

	// CompatibleCanvas, if set, requires an adapter able to present to it.
	CompatibleCanvas Canvas
}

// Adapter is one graphics device exposed by the host.
type Adapter interface {
	Info() gpucontext.AdapterInfo

	// RequestDevice creates a logical device with a single queue.
	RequestDevice(ctx context.Context, desc *DeviceDescriptor) (Device, error)

	Release()
}

// DeviceDescriptor describes a logical device.
type DeviceDescriptor struct {
	Label string
}

// Device creates GPU objects and owns the submission queue.
type Device interface {
	// Queue returns the device queue, or nil if the device has none.
	Queue() Queue

	// CreateShaderModule compiles WGSL source. Compiler diagnostics are
	// returned as *CompileError.
	CreateShaderModule(ctx context.Context, desc *ShaderModuleDescriptor) (ShaderModule, error)

	CreateRenderPipeline(ctx context.Context, desc *RenderPipelineDescriptor) (RenderPipeline, error)

	CreateCommandEncoder(label string) (CommandEncoder, error)

	Release()
}

// ShaderModuleDescriptor describes a WGSL shader module.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
}

// ShaderModule is a compiled shader module.
type ShaderModule interface {
	Release()
}

// ProgrammableStage binds a shader module entry point to a pipeline stage.
type ProgrammableStage struct {
	Module     ShaderModule
	EntryPoint string
}

// RenderPipelineDescriptor describes a render pipeline without vertex
// buffers or bind groups.
type RenderPipelineDescriptor struct {
	Label       string
	Vertex      ProgrammableStage
	Fragment    ProgrammableStage
	Targets     []gputypes.ColorTargetState
	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
}

// RenderPipeline is an immutable pipeline state object.
type RenderPipeline interface {
	Release()
}

// CommandEncoder records commands into a command buffer.
type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPass, error)

	// Finish ends recording. The encoder cannot be used afterwards.
	Finish() (CommandBuffer, error)

	// Discard drops everything recorded so far.
	Discard()
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	View       TextureView
	LoadOp     gputypes.LoadOp
	StoreOp    gputypes.StoreOp
	ClearValue gputypes.Color
}

// RenderPass records draw commands.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	End() error
}

// CommandBuffer is a finished command recording. A buffer that was not
// accepted by Queue.Submit must be released.
type CommandBuffer interface {
	Release()
}

// Queue executes command buffers in submission order.
type Queue interface {
	Submit(ctx context.Context, buffers ...CommandBuffer) error
}

// TextureView is a view of a texture usable as a render attachment.
type TextureView interface{}

// SurfaceTexture is the presentable image of one frame.
type SurfaceTexture interface {
	View() TextureView
}

// Capabilities lists what a canvas can be configured with.
type Capabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode
	AlphaModes   []gputypes.CompositeAlphaMode
}

// SurfaceConfiguration configures a canvas for presentation.
type SurfaceConfiguration struct {
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	Width       uint32
	Height      uint32
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
}

// Canvas is a presentable target.
//
// The embedded WindowProvider reports the layout size in logical points and
// the device pixel ratio; PixelSize reports the backing store size in
// physical pixels.
type Canvas interface {
	gpucontext.WindowProvider

	// ID returns the identifier the canvas was resolved by.
	ID() string

	// PixelSize returns the canvas size in physical pixels.
	PixelSize() (width, height int)

	// Capabilities returns the supported configurations.
	Capabilities() Capabilities

	// PreferredFormat returns the canvas's native presentation format.
	PreferredFormat() gputypes.TextureFormat

	// Configure prepares the canvas to present frames rendered by device.
	Configure(device Device, cfg *SurfaceConfiguration) error

	// Unconfigure releases presentation resources.
	Unconfigure()

	// CurrentTexture returns the image for the next frame.
	// Returns ErrSurfaceOutdated or ErrSurfaceLost.
	CurrentTexture() (SurfaceTexture, error)

	// Present hands a rendered frame to the presentation engine.
	Present(ctx context.Context, tex SurfaceTexture) error

	// Discard drops an acquired frame without presenting it.
	Discard(tex SurfaceTexture)
}

// PhysicalSize converts a window provider's logical size to physical pixels.
func PhysicalSize(wp gpucontext.WindowProvider) (int, int) {
	w, h := wp.Size()
	s := wp.ScaleFactor()
	if s <= 0 {
		s = 1
	}
	return int(math.Round(float64(w) * s)), int(math.Round(float64(h) * s))
}
