//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"syscall/js"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
)

// Backend is the browser gpucore.Backend.
type Backend struct {
	mu       sync.Mutex
	canvases map[string]*Canvas
}

var defaultBackend = New()

// init registers the browser backend on package import.
func init() {
	backend.Register(backend.BackendBrowser, func() gpucore.Backend {
		return defaultBackend
	})
}

// New returns a backend bound to the page's global document.
func New() *Backend {
	return &Backend{canvases: make(map[string]*Canvas)}
}

// Default returns the registered backend instance.
func Default() *Backend { return defaultBackend }

// Name implements gpucore.Backend.
func (b *Backend) Name() string { return backend.BackendBrowser }

// Canvas implements gpucore.Backend. The same element always resolves to
// the same *Canvas, so that its surface claim and context are shared.
func (b *Backend) Canvas(id string) (gpucore.Canvas, error) {
	doc := js.Global().Get("document")
	if !exists(doc) {
		return nil, gpucore.ErrNoDocument
	}
	el := doc.Call("getElementById", id)
	if !exists(el) {
		return nil, fmt.Errorf("%w: %q", gpucore.ErrCanvasNotFound, id)
	}
	if tag := el.Get("tagName"); tag.Type() != js.TypeString || !strings.EqualFold(tag.String(), "canvas") {
		return nil, fmt.Errorf("%w: %q is <%s>", gpucore.ErrNotCanvas, id, strings.ToLower(tag.String()))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.canvases[id]; ok && c.el.Equal(el) {
		return c, nil
	}
	c := newCanvas(id, el)
	b.canvases[id] = c
	return c, nil
}

// RequestAdapter implements gpucore.Backend.
func (b *Backend) RequestAdapter(ctx context.Context, opts *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	gpu := js.Global().Get("navigator").Get("gpu")
	if !exists(gpu) {
		return nil, fmt.Errorf("%w: %w", gpucore.ErrNoAdapter, ErrNoWebGPU)
	}
	req := map[string]any{}
	if opts != nil {
		if p := powerPreferenceName(opts.PowerPreference); p != "" {
			req["powerPreference"] = p
		}
		req["forceFallbackAdapter"] = opts.ForceFallbackAdapter
	}
	v, err := await(ctx, gpu.Call("requestAdapter", req))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpucore.ErrNoAdapter, err)
	}
	if !exists(v) {
		return nil, gpucore.ErrNoAdapter
	}
	return &Adapter{gpu: gpu, adapter: v}, nil
}

// Adapter wraps a GPUAdapter.
type Adapter struct {
	gpu     js.Value
	adapter js.Value
}

// Info implements gpucore.Adapter. Browsers may hide adapter details, in
// which case the name is empty and the type unknown.
func (a *Adapter) Info() gpucontext.AdapterInfo {
	info := gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	v := a.adapter.Get("info")
	if !exists(v) {
		return info
	}
	var parts []string
	for _, key := range []string{"vendor", "architecture", "description"} {
		if s := v.Get(key); s.Type() == js.TypeString && s.String() != "" {
			parts = append(parts, s.String())
		}
	}
	info.Name = strings.Join(parts, " ")
	if fb := v.Get("isFallbackAdapter"); fb.Type() == js.TypeBoolean && fb.Bool() {
		info.Type = gpucontext.AdapterTypeSoftware
	}
	return info
}

// RequestDevice implements gpucore.Adapter.
func (a *Adapter) RequestDevice(ctx context.Context, desc *gpucore.DeviceDescriptor) (gpucore.Device, error) {
	req := map[string]any{}
	if desc != nil && desc.Label != "" {
		req["label"] = desc.Label
	}
	v, err := await(ctx, a.adapter.Call("requestDevice", req))
	if err != nil {
		return nil, fmt.Errorf("browser: request device: %w", err)
	}
	d := &Device{device: v}
	d.watchLost()
	return d, nil
}

// Release implements gpucore.Adapter. Adapters are garbage collected.
func (a *Adapter) Release() {}

// Device wraps a GPUDevice.
type Device struct {
	device js.Value
	onLost js.Func
}

// watchLost logs when the browser reports the device lost. The callback
// releases itself; the lost promise settles at most once.
func (d *Device) watchLost() {
	lost := d.device.Get("lost")
	if !exists(lost) {
		return
	}
	d.onLost = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer d.onLost.Release()
		info := arg0(args)
		reason := info.Get("reason")
		if reason.Type() == js.TypeString && reason.String() == "destroyed" {
			logging.Logger().Debug("browser: device destroyed")
			return nil
		}
		logging.Logger().Warn("browser: device lost",
			"reason", reason.String(),
			"message", info.Get("message").String())
		return nil
	})
	lost.Call("then", d.onLost)
}
