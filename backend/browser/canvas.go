//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"math"
	"syscall/js"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/gpucore"
)

// Canvas is an HTML canvas element presented through a "webgpu" context.
type Canvas struct {
	id  string
	el  js.Value
	ctx js.Value

	config *gpucore.SurfaceConfiguration
}

func newCanvas(id string, el js.Value) *Canvas {
	return &Canvas{id: id, el: el}
}

// ID implements gpucore.Canvas.
func (c *Canvas) ID() string { return c.id }

// Size implements gpucontext.WindowProvider. It returns the layout size in
// CSS pixels.
func (c *Canvas) Size() (int, int) {
	w, h := c.cssSize()
	return int(math.Round(w)), int(math.Round(h))
}

// cssSize returns the layout box of the canvas. It is 0x0 for a hidden or
// detached canvas, whatever its width and height attributes say.
func (c *Canvas) cssSize() (float64, float64) {
	r := c.el.Call("getBoundingClientRect")
	return r.Get("width").Float(), r.Get("height").Float()
}

// ScaleFactor implements gpucontext.WindowProvider.
func (c *Canvas) ScaleFactor() float64 {
	dpr := js.Global().Get("devicePixelRatio")
	if dpr.Type() != js.TypeNumber || dpr.Float() <= 0 {
		return 1
	}
	return dpr.Float()
}

// RequestRedraw implements gpucontext.WindowProvider. Frames are drawn on
// demand by the host, so there is nothing to schedule.
func (c *Canvas) RequestRedraw() {}

// PixelSize implements gpucore.Canvas. A canvas with a nonzero layout size
// is at least one pixel in each dimension.
func (c *Canvas) PixelSize() (int, int) {
	w, h := c.cssSize()
	s := c.ScaleFactor()
	return physical(w, s), physical(h, s)
}

func physical(v, scale float64) int {
	if v <= 0 {
		return 0
	}
	return max(1, int(math.Round(v*scale)))
}

func (c *Canvas) context() (js.Value, error) {
	if exists(c.ctx) {
		return c.ctx, nil
	}
	ctx := c.el.Call("getContext", "webgpu")
	if !exists(ctx) {
		return js.Undefined(), fmt.Errorf("%w: %q", ErrNoContext, c.id)
	}
	c.ctx = ctx
	return ctx, nil
}

// Capabilities implements gpucore.Canvas.
func (c *Canvas) Capabilities() gpucore.Capabilities {
	return gpucore.Capabilities{
		Formats:      canvasFormats,
		PresentModes: []gputypes.PresentMode{gputypes.PresentModeFifo},
		AlphaModes: []gputypes.CompositeAlphaMode{
			gputypes.CompositeAlphaModeOpaque,
			gputypes.CompositeAlphaModePremultiplied,
		},
	}
}

// PreferredFormat implements gpucore.Canvas. It asks the browser for its
// preferred canvas format, which is bgra8unorm or rgba8unorm.
func (c *Canvas) PreferredFormat() gputypes.TextureFormat {
	gpu := js.Global().Get("navigator").Get("gpu")
	if !exists(gpu) || gpu.Get("getPreferredCanvasFormat").Type() != js.TypeFunction {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return parseFormat(gpu.Call("getPreferredCanvasFormat").String())
}

// Configure implements gpucore.Canvas. The canvas backing store is resized
// to cfg's size before the context is configured.
func (c *Canvas) Configure(device gpucore.Device, cfg *gpucore.SurfaceConfiguration) error {
	d, ok := device.(*Device)
	if !ok {
		return fmt.Errorf("browser: configure %q: %w", c.id, gpucore.ErrForeignObject)
	}
	format, err := formatName(cfg.Format)
	if err != nil {
		return err
	}
	ctx, err := c.context()
	if err != nil {
		return err
	}
	c.el.Set("width", cfg.Width)
	c.el.Set("height", cfg.Height)
	ctx.Call("configure", map[string]any{
		"device":    d.device,
		"format":    format,
		"usage":     uint32(cfg.Usage),
		"alphaMode": alphaModeName(cfg.AlphaMode),
	})
	cp := *cfg
	c.config = &cp
	return nil
}

// Unconfigure implements gpucore.Canvas.
func (c *Canvas) Unconfigure() {
	if exists(c.ctx) && c.config != nil {
		c.ctx.Call("unconfigure")
	}
	c.config = nil
}

// CurrentTexture implements gpucore.Canvas.
func (c *Canvas) CurrentTexture() (gpucore.SurfaceTexture, error) {
	if c.config == nil {
		return nil, gpucore.ErrNotConfigured
	}
	if !c.el.Get("isConnected").Truthy() {
		return nil, fmt.Errorf("%w: %q removed from the document", gpucore.ErrSurfaceLost, c.id)
	}
	if w, h := c.el.Get("width").Int(), c.el.Get("height").Int(); w != int(c.config.Width) || h != int(c.config.Height) {
		return nil, fmt.Errorf("%w: %q is %dx%d, configured %dx%d",
			gpucore.ErrSurfaceOutdated, c.id, w, h, c.config.Width, c.config.Height)
	}
	tex := c.ctx.Call("getCurrentTexture")
	if !exists(tex) {
		return nil, fmt.Errorf("%w: %q returned no texture", gpucore.ErrSurfaceLost, c.id)
	}
	return &Texture{texture: tex}, nil
}

// Present implements gpucore.Canvas. The browser composites the current
// texture when control returns to the event loop.
func (c *Canvas) Present(_ context.Context, tex gpucore.SurfaceTexture) error {
	if _, ok := tex.(*Texture); !ok {
		return fmt.Errorf("browser: present %q: %w", c.id, gpucore.ErrForeignObject)
	}
	if c.config == nil {
		return gpucore.ErrNotConfigured
	}
	return nil
}

// Discard implements gpucore.Canvas. An unpresented texture is dropped with
// the frame.
func (c *Canvas) Discard(gpucore.SurfaceTexture) {}

// Texture is the current texture of a canvas context.
type Texture struct {
	texture js.Value
}

// View implements gpucore.SurfaceTexture.
func (t *Texture) View() gpucore.TextureView {
	return t.texture.Call("createView")
}
