// Package device acquires the adapter, logical device and queue that every
// other component renders with.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
)

// Label is the debug label given to the logical device.
const Label = "main device"

// Context owns the adapter, device and queue handles of one invocation.
// It implements [gpucontext.DeviceProvider].
type Context struct {
	backend gpucore.Backend
	adapter gpucore.Adapter
	device  gpucore.Device
	queue   gpucore.Queue
	info    gpucontext.AdapterInfo

	surfaceFormat gputypes.TextureFormat
	released      bool
}

var _ gpucontext.DeviceProvider = (*Context)(nil)

// Acquire requests an adapter from b and a logical device from the adapter.
//
// It fails with [failure.ErrNoAdapter] when b exposes no compatible adapter
// and with [failure.ErrDeviceRequest] when the device is refused or has no
// queue. Nothing is retried; handles acquired before a failure are released.
func Acquire(ctx context.Context, b gpucore.Backend, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.Logger()

	adapter, err := b.RequestAdapter(ctx, &gpucore.AdapterOptions{
		PowerPreference:      o.powerPreference,
		ForceFallbackAdapter: o.forceFallback,
		CompatibleCanvas:     o.compatible,
	})
	if err != nil {
		if errors.Is(err, gpucore.ErrNoAdapter) {
			return nil, failure.Wrap(failure.Device, failure.ErrNoAdapter, err)
		}
		return nil, failure.Wrap(failure.Device, failure.ErrNoAdapter,
			fmt.Errorf("%s: request adapter: %w", b.Name(), err))
	}
	if adapter == nil {
		return nil, failure.New(failure.Device, failure.ErrNoAdapter, b.Name()+" returned no adapter")
	}
	info := adapter.Info()

	dev, err := adapter.RequestDevice(ctx, &gpucore.DeviceDescriptor{Label: Label})
	if err != nil {
		adapter.Release()
		return nil, failure.Wrap(failure.Device, failure.ErrDeviceRequest, err)
	}
	queue := dev.Queue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		return nil, failure.Wrap(failure.Device, failure.ErrDeviceRequest, gpucore.ErrNoQueue)
	}

	log.Info("device: adapter selected",
		"backend", b.Name(),
		"adapter", info.Name,
		"type", info.Type.String(),
	)

	return &Context{
		backend: b,
		adapter: adapter,
		device:  dev,
		queue:   queue,
		info:    info,
	}, nil
}

// Backend returns the backend the context was acquired from.
func (c *Context) Backend() gpucore.Backend { return c.backend }

// GPUDevice returns the backend device.
func (c *Context) GPUDevice() gpucore.Device { return c.device }

// GPUQueue returns the backend queue.
func (c *Context) GPUQueue() gpucore.Queue { return c.queue }

// Device implements gpucontext.DeviceProvider.
func (c *Context) Device() gpucontext.Device { return c.device }

// Queue implements gpucontext.DeviceProvider.
func (c *Context) Queue() gpucontext.Queue { return c.queue }

// Adapter implements gpucontext.DeviceProvider.
func (c *Context) Adapter() gpucontext.Adapter { return c.adapter }

// AdapterInfo implements gpucontext.DeviceProvider.
func (c *Context) AdapterInfo() gpucontext.AdapterInfo { return c.info }

// SurfaceFormat implements gpucontext.DeviceProvider. It returns the format
// of the surface bound to this context, or TextureFormatUndefined when none
// is bound.
func (c *Context) SurfaceFormat() gputypes.TextureFormat { return c.surfaceFormat }

// SetSurfaceFormat records the format of the surface bound to this context.
// It is called by the surface package.
func (c *Context) SetSurfaceFormat(f gputypes.TextureFormat) { c.surfaceFormat = f }

// Released reports whether Release has been called.
func (c *Context) Released() bool { return c.released }

// Release releases the device, then the adapter. It is safe to call more
// than once.
func (c *Context) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	if c.device != nil {
		c.device.Release()
	}
	if c.adapter != nil {
		c.adapter.Release()
	}
	logging.Logger().Debug("device: released", "adapter", c.info.Name)
}
