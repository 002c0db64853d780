// Package gputest provides an in-memory gpucore backend that records every
// call it receives. Tests use it to observe whether a component performed
// device work, submitted commands or presented a frame.
package gputest

import (
	"context"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/gpucore"
)

// Counts records the calls made against a Backend.
type Counts struct {
	AdapterRequests   int
	DeviceRequests    int
	CapabilityQueries int
	Configures        int
	ShaderModules     int
	Pipelines         int
	Encoders          int
	RenderPasses      int
	Draws             int
	Submits           int
	BufferReleases    int
	Acquires          int
	Presents          int
	Discards          int
}

// DeviceWork reports the number of calls that touch an adapter, a device or
// a canvas configuration.
func (c Counts) DeviceWork() int {
	return c.AdapterRequests + c.DeviceRequests + c.CapabilityQueries + c.Configures +
		c.ShaderModules + c.Pipelines + c.Encoders
}

// Backend is a fake gpucore.Backend.
//
// The exported fields inject failures; they must be set before the backend
// is used.
type Backend struct {
	// NoAdapter makes RequestAdapter fail with gpucore.ErrNoAdapter.
	NoAdapter bool
	// DeviceErr is returned by Adapter.RequestDevice.
	DeviceErr error
	// NoQueue makes devices report a nil queue.
	NoQueue bool
	// CompileMessages, if set, make CreateShaderModule fail with a
	// *gpucore.CompileError carrying them.
	CompileMessages []string
	// ShaderModuleErr and PipelineErr are returned by CreateShaderModule
	// and CreateRenderPipeline.
	ShaderModuleErr error
	PipelineErr     error
	// SubmitErr is returned by Queue.Submit.
	SubmitErr error

	mu       sync.Mutex
	counts   Counts
	canvases map[string]*Canvas
	elements map[string]bool
	lastDraw [4]uint32
}

// NewBackend returns an empty fake backend.
func NewBackend() *Backend {
	return &Backend{
		canvases: make(map[string]*Canvas),
		elements: make(map[string]bool),
	}
}

// Name implements gpucore.Backend.
func (b *Backend) Name() string { return "gputest" }

// Counts returns a snapshot of the recorded calls.
func (b *Backend) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// LastDraw returns the arguments of the most recent Draw call.
func (b *Backend) LastDraw() [4]uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDraw
}

func (b *Backend) count(f func(c *Counts)) {
	b.mu.Lock()
	f(&b.counts)
	b.mu.Unlock()
}

// AddCanvas adds a canvas of w x h physical pixels. It supports
// RGBA8Unorm, BGRA8Unorm and BGRA8UnormSrgb and prefers BGRA8Unorm.
func (b *Backend) AddCanvas(id string, w, h int) *Canvas {
	c := &Canvas{
		backend: b,
		id:      id,
		w:       w,
		h:       h,
		Formats: []gputypes.TextureFormat{
			gputypes.TextureFormatBGRA8Unorm,
			gputypes.TextureFormatBGRA8UnormSrgb,
			gputypes.TextureFormatRGBA8Unorm,
		},
		Preferred:  gputypes.TextureFormatBGRA8Unorm,
		AlphaModes: []gputypes.CompositeAlphaMode{gputypes.CompositeAlphaModeOpaque},
	}
	b.mu.Lock()
	b.canvases[id] = c
	b.mu.Unlock()
	return c
}

// AddElement adds a non-canvas element.
func (b *Backend) AddElement(id string) {
	b.mu.Lock()
	b.elements[id] = true
	b.mu.Unlock()
}

// Canvas implements gpucore.Backend.
func (b *Backend) Canvas(id string) (gpucore.Canvas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.canvases[id]; ok {
		return c, nil
	}
	if b.elements[id] {
		return nil, gpucore.ErrNotCanvas
	}
	return nil, gpucore.ErrCanvasNotFound
}

// RequestAdapter implements gpucore.Backend.
func (b *Backend) RequestAdapter(_ context.Context, _ *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	b.count(func(c *Counts) { c.AdapterRequests++ })
	if b.NoAdapter {
		return nil, gpucore.ErrNoAdapter
	}
	return &adapter{b: b}, nil
}

type adapter struct{ b *Backend }

func (a *adapter) Info() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "gputest", Type: gpucontext.AdapterTypeSoftware}
}

func (a *adapter) RequestDevice(_ context.Context, _ *gpucore.DeviceDescriptor) (gpucore.Device, error) {
	a.b.count(func(c *Counts) { c.DeviceRequests++ })
	if a.b.DeviceErr != nil {
		return nil, a.b.DeviceErr
	}
	return &Device{b: a.b}, nil
}

func (a *adapter) Release() {}

// Device is a fake gpucore.Device.
type Device struct {
	b        *Backend
	released bool
}

// Released reports whether Release was called.
func (d *Device) Released() bool { return d.released }

// Queue implements gpucore.Device.
func (d *Device) Queue() gpucore.Queue {
	if d.b.NoQueue {
		return nil
	}
	return queue{b: d.b}
}

// CreateShaderModule implements gpucore.Device.
func (d *Device) CreateShaderModule(_ context.Context, desc *gpucore.ShaderModuleDescriptor) (gpucore.ShaderModule, error) {
	d.b.count(func(c *Counts) { c.ShaderModules++ })
	if len(d.b.CompileMessages) > 0 {
		return nil, &gpucore.CompileError{Label: desc.Label, Messages: d.b.CompileMessages}
	}
	if d.b.ShaderModuleErr != nil {
		return nil, d.b.ShaderModuleErr
	}
	return releaser{}, nil
}

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(_ context.Context, desc *gpucore.RenderPipelineDescriptor) (gpucore.RenderPipeline, error) {
	d.b.count(func(c *Counts) { c.Pipelines++ })
	if d.b.PipelineErr != nil {
		return nil, d.b.PipelineErr
	}
	return &Pipeline{Desc: *desc}, nil
}

// CreateCommandEncoder implements gpucore.Device.
func (d *Device) CreateCommandEncoder(string) (gpucore.CommandEncoder, error) {
	d.b.count(func(c *Counts) { c.Encoders++ })
	return &encoder{b: d.b}, nil
}

// Release implements gpucore.Device.
func (d *Device) Release() { d.released = true }

type releaser struct{}

func (releaser) Release() {}

// Pipeline is a fake gpucore.RenderPipeline.
type Pipeline struct {
	Desc     gpucore.RenderPipelineDescriptor
	Released bool
}

// Release implements gpucore.RenderPipeline.
func (p *Pipeline) Release() { p.Released = true }

type encoder struct{ b *Backend }

func (e *encoder) BeginRenderPass(*gpucore.RenderPassDescriptor) (gpucore.RenderPass, error) {
	e.b.count(func(c *Counts) { c.RenderPasses++ })
	return &pass{b: e.b}, nil
}

func (e *encoder) Finish() (gpucore.CommandBuffer, error) { return &commandBuffer{b: e.b}, nil }

func (e *encoder) Discard() {}

type commandBuffer struct{ b *Backend }

func (cb *commandBuffer) Release() {
	cb.b.count(func(c *Counts) { c.BufferReleases++ })
}

type pass struct{ b *Backend }

func (p *pass) SetPipeline(gpucore.RenderPipeline) {}

func (p *pass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.b.mu.Lock()
	p.b.counts.Draws++
	p.b.lastDraw = [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance}
	p.b.mu.Unlock()
}

func (p *pass) End() error { return nil }

type queue struct{ b *Backend }

func (q queue) Submit(_ context.Context, _ ...gpucore.CommandBuffer) error {
	q.b.count(func(c *Counts) { c.Submits++ })
	return q.b.SubmitErr
}

// Canvas is a fake gpucore.Canvas.
type Canvas struct {
	// Formats, Preferred and AlphaModes describe the capabilities.
	Formats    []gputypes.TextureFormat
	Preferred  gputypes.TextureFormat
	AlphaModes []gputypes.CompositeAlphaMode

	// AcquireErr is returned by CurrentTexture.
	AcquireErr error
	// PresentErr is returned by Present.
	PresentErr error

	backend *Backend
	id      string
	w, h    int
	config  *gpucore.SurfaceConfiguration
}

// Resize changes the canvas size.
func (c *Canvas) Resize(w, h int) {
	c.w, c.h = w, h
}

// Config returns the current configuration, or nil.
func (c *Canvas) Config() *gpucore.SurfaceConfiguration { return c.config }

// ID implements gpucore.Canvas.
func (c *Canvas) ID() string { return c.id }

// Size implements gpucontext.WindowProvider.
func (c *Canvas) Size() (int, int) { return c.w, c.h }

// ScaleFactor implements gpucontext.WindowProvider.
func (c *Canvas) ScaleFactor() float64 { return 1 }

// RequestRedraw implements gpucontext.WindowProvider.
func (c *Canvas) RequestRedraw() {}

// PixelSize implements gpucore.Canvas.
func (c *Canvas) PixelSize() (int, int) { return c.w, c.h }

// Capabilities implements gpucore.Canvas.
func (c *Canvas) Capabilities() gpucore.Capabilities {
	c.backend.count(func(n *Counts) { n.CapabilityQueries++ })
	return gpucore.Capabilities{
		Formats:      c.Formats,
		PresentModes: []gputypes.PresentMode{gputypes.PresentModeFifo},
		AlphaModes:   c.AlphaModes,
	}
}

// PreferredFormat implements gpucore.Canvas.
func (c *Canvas) PreferredFormat() gputypes.TextureFormat { return c.Preferred }

// Configure implements gpucore.Canvas.
func (c *Canvas) Configure(_ gpucore.Device, cfg *gpucore.SurfaceConfiguration) error {
	c.backend.count(func(n *Counts) { n.Configures++ })
	cp := *cfg
	c.config = &cp
	return nil
}

// Unconfigure implements gpucore.Canvas.
func (c *Canvas) Unconfigure() { c.config = nil }

type texture struct{}

func (texture) View() gpucore.TextureView { return struct{}{} }

// CurrentTexture implements gpucore.Canvas.
func (c *Canvas) CurrentTexture() (gpucore.SurfaceTexture, error) {
	c.backend.count(func(n *Counts) { n.Acquires++ })
	if c.AcquireErr != nil {
		return nil, c.AcquireErr
	}
	if c.config == nil {
		return nil, gpucore.ErrNotConfigured
	}
	return texture{}, nil
}

// Present implements gpucore.Canvas.
func (c *Canvas) Present(context.Context, gpucore.SurfaceTexture) error {
	c.backend.count(func(n *Counts) { n.Presents++ })
	return c.PresentErr
}

// Discard implements gpucore.Canvas.
func (c *Canvas) Discard(gpucore.SurfaceTexture) {
	c.backend.count(func(n *Counts) { n.Discards++ })
}
