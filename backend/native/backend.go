//go:build !(js && wasm)

package native

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	// Software HAL for headless rendering with ForceFallbackAdapter.
	_ "github.com/gogpu/wgpu/hal/software"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
)

// Backend is the native gpucore.Backend. It owns a wgpu instance, created
// on the first adapter request, and a Document of offscreen canvases.
type Backend struct {
	mu       sync.Mutex
	instance *wgpu.Instance
	doc      *Document
}

var defaultBackend = New()

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func() gpucore.Backend {
		return defaultBackend
	})
}

// New returns a backend with an empty document.
func New() *Backend {
	return &Backend{doc: NewDocument()}
}

// Default returns the registered backend instance.
func Default() *Backend { return defaultBackend }

// Name implements gpucore.Backend.
func (b *Backend) Name() string { return backend.BackendNative }

// Document returns the canvases this backend resolves.
func (b *Backend) Document() *Document { return b.doc }

// Canvas implements gpucore.Backend.
func (b *Backend) Canvas(id string) (gpucore.Canvas, error) {
	c, err := b.doc.Canvas(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SetLogger routes wgpu's log output to l.
func (b *Backend) SetLogger(l *slog.Logger) {
	wgpu.SetLogger(l)
}

func (b *Backend) wgpuInstance() (*wgpu.Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != nil {
		return b.instance, nil
	}
	inst, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	b.instance = inst
	return inst, nil
}

// RequestAdapter implements gpucore.Backend. Offscreen canvases are
// compatible with every adapter, so opts.CompatibleCanvas is not used.
func (b *Backend) RequestAdapter(_ context.Context, opts *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	inst, err := b.wgpuInstance()
	if err != nil {
		return nil, err
	}
	var wopts *wgpu.RequestAdapterOptions
	if opts != nil {
		wopts = &wgpu.RequestAdapterOptions{
			PowerPreference:      opts.PowerPreference,
			ForceFallbackAdapter: opts.ForceFallbackAdapter,
		}
	}
	a, err := inst.RequestAdapter(wopts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpucore.ErrNoAdapter, err)
	}
	return &Adapter{adapter: a}, nil
}

// Close releases the wgpu instance. The backend creates a new one on the
// next adapter request.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Adapter wraps a wgpu adapter.
type Adapter struct {
	adapter *wgpu.Adapter
}

// Info implements gpucore.Adapter.
func (a *Adapter) Info() gpucontext.AdapterInfo {
	info := a.adapter.Info()
	return gpucontext.AdapterInfo{Name: info.Name, Type: adapterType(info.DeviceType)}
}

// WGPU returns the underlying adapter.
func (a *Adapter) WGPU() *wgpu.Adapter { return a.adapter }

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// RequestDevice implements gpucore.Adapter.
func (a *Adapter) RequestDevice(_ context.Context, desc *gpucore.DeviceDescriptor) (gpucore.Device, error) {
	var wdesc *wgpu.DeviceDescriptor
	if desc != nil {
		wdesc = &wgpu.DeviceDescriptor{Label: desc.Label}
	}
	d, err := a.adapter.RequestDevice(wdesc)
	if err != nil {
		return nil, fmt.Errorf("native: request device: %w", err)
	}
	info := a.adapter.Info()
	logging.Logger().Debug("native: device created",
		"adapter", info.Name,
		"backend", info.Backend.String(),
		"driver", info.Driver,
	)
	return &Device{device: d, packedCopies: info.DeviceType == gputypes.DeviceTypeCPU}, nil
}

// Release implements gpucore.Adapter.
func (a *Adapter) Release() { a.adapter.Release() }
