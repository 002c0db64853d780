//go:build !(js && wasm)

package native

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/internal/logging"
)

const (
	bytesPerPixel = 4
	// copyRowAlignment is the required bytesPerRow alignment of
	// texture-to-buffer copies.
	copyRowAlignment = 256
)

// canvasFormats are the formats an offscreen canvas can be configured with,
// preferred format first.
var canvasFormats = []gputypes.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb,
}

// Canvas is an offscreen presentable target. Presenting a frame reads it
// back into an image available from Snapshot.
//
// Canvas is safe for concurrent use.
type Canvas struct {
	id string

	mu     sync.Mutex
	width  int
	height int
	scale  float64
	lost   bool

	device *Device
	config gpucore.SurfaceConfiguration
	target *wgpu.Texture
	view   *wgpu.TextureView

	snapshot  *image.RGBA
	presented uint64
}

func newCanvas(id string, width, height int) *Canvas {
	return &Canvas{id: id, width: width, height: height, scale: 1}
}

// ID implements gpucore.Canvas.
func (c *Canvas) ID() string { return c.id }

// Size implements gpucontext.WindowProvider. It returns the size in
// logical points.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// ScaleFactor implements gpucontext.WindowProvider.
func (c *Canvas) ScaleFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// RequestRedraw implements gpucontext.WindowProvider. Offscreen canvases
// are redrawn only on request by the caller, so this is a no-op.
func (c *Canvas) RequestRedraw() {}

// PixelSize implements gpucore.Canvas.
func (c *Canvas) PixelSize() (width, height int) {
	return gpucore.PhysicalSize(c)
}

// Resize changes the canvas size in logical points.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
}

// SetScaleFactor sets the ratio of physical pixels to logical points.
func (c *Canvas) SetScaleFactor(s float64) {
	c.mu.Lock()
	c.scale = s
	c.mu.Unlock()
}

// Lose marks the canvas as lost: every later configure, acquire and
// present fails with gpucore.ErrSurfaceLost.
func (c *Canvas) Lose() {
	c.mu.Lock()
	c.lost = true
	c.mu.Unlock()
}

// Restore clears a previous Lose.
func (c *Canvas) Restore() {
	c.mu.Lock()
	c.lost = false
	c.mu.Unlock()
}

// Capabilities implements gpucore.Canvas.
func (c *Canvas) Capabilities() gpucore.Capabilities {
	return gpucore.Capabilities{
		Formats:      slices.Clone(canvasFormats),
		PresentModes: []gputypes.PresentMode{gputypes.PresentModeFifo},
		AlphaModes: []gputypes.CompositeAlphaMode{
			gputypes.CompositeAlphaModeOpaque,
			gputypes.CompositeAlphaModePremultiplied,
		},
	}
}

// PreferredFormat implements gpucore.Canvas. Snapshots are RGBA, so the
// preferred format needs no channel swizzle on readback.
func (c *Canvas) PreferredFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Configure implements gpucore.Canvas. It allocates the render target.
func (c *Canvas) Configure(device gpucore.Device, cfg *gpucore.SurfaceConfiguration) error {
	d, ok := device.(*Device)
	if !ok {
		return fmt.Errorf("native: configure %q: %w", c.id, gpucore.ErrForeignObject)
	}
	if !slices.Contains(canvasFormats, cfg.Format) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.Format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrCanvasSize, cfg.Width, cfg.Height)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost {
		return gpucore.ErrSurfaceLost
	}
	c.releaseTarget()

	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: c.id,
		Size: wgpu.Extent3D{
			Width:              cfg.Width,
			Height:             cfg.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        cfg.Format,
		Usage:         cfg.Usage | gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("native: create canvas texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("native: create canvas view: %w", err)
	}

	c.device = d
	c.config = *cfg
	c.target = tex
	c.view = view
	return nil
}

// Unconfigure implements gpucore.Canvas.
func (c *Canvas) Unconfigure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseTarget()
	c.device = nil
}

func (c *Canvas) releaseTarget() {
	if c.view != nil {
		c.view.Release()
		c.view = nil
	}
	if c.target != nil {
		c.target.Release()
		c.target = nil
	}
}

type surfaceTexture struct {
	view *wgpu.TextureView
}

func (t surfaceTexture) View() gpucore.TextureView { return t.view }

// CurrentTexture implements gpucore.Canvas. Every frame renders into the
// same target.
func (c *Canvas) CurrentTexture() (gpucore.SurfaceTexture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost {
		return nil, gpucore.ErrSurfaceLost
	}
	if c.target == nil {
		return nil, gpucore.ErrNotConfigured
	}
	w, h := gpucore.PhysicalSize(physicalSizer{c.width, c.height, c.scale})
	if uint32(w) != c.config.Width || uint32(h) != c.config.Height {
		return nil, gpucore.ErrSurfaceOutdated
	}
	return surfaceTexture{view: c.view}, nil
}

// Present implements gpucore.Canvas. It copies the target into a staging
// buffer, waits for the copy and stores the result as the snapshot.
func (c *Canvas) Present(ctx context.Context, _ gpucore.SurfaceTexture) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lost {
		return gpucore.ErrSurfaceLost
	}
	if c.target == nil {
		return gpucore.ErrNotConfigured
	}

	img, err := c.readback(ctx)
	if err != nil {
		return err
	}
	c.snapshot = img
	c.presented++
	logging.Logger().DebugContext(ctx, "native: frame presented", "canvas", c.id, "frame", c.presented)
	return nil
}

func (c *Canvas) readback(ctx context.Context) (*image.RGBA, error) {
	w, h := c.config.Width, c.config.Height
	bytesPerRow := alignUp(w*bytesPerPixel, copyRowAlignment)
	size := uint64(bytesPerRow) * uint64(h)
	dev := c.device.device

	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: c.id + " readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create readback buffer: %w", err)
	}
	defer buf.Release()

	enc, err := dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: c.id + " present"})
	if err != nil {
		return nil, fmt.Errorf("native: create present encoder: %w", err)
	}
	enc.CopyTextureToBuffer(c.target, buf, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: h,
		},
		TextureBase: wgpu.ImageCopyTexture{Texture: c.target},
		Size:        wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	cmd, err := enc.Finish()
	if err != nil {
		return nil, fmt.Errorf("native: finish present encoder: %w", err)
	}
	if _, err := dev.Queue().Submit(cmd); err != nil {
		cmd.Release()
		return nil, fmt.Errorf("native: submit present copy: %w", err)
	}

	if err := buf.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("native: map readback buffer: %w", err)
	}
	defer func() { _ = buf.Unmap() }()
	rng, err := buf.MappedRange(0, size)
	if err != nil {
		return nil, fmt.Errorf("native: mapped range: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpack(img, rng.Bytes(), readbackStride(w, c.device.packedCopies), swapsRedBlue(c.config.Format))
	return img, nil
}

// unpack copies rows of tightly packed 4-byte pixels from src, whose rows
// are stride bytes apart, into img. If swap is set, the first and third
// channels are exchanged.
func unpack(img *image.RGBA, src []byte, stride int, swap bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := src[y*stride : y*stride+w*bytesPerPixel]
		dst := img.Pix[y*img.Stride : y*img.Stride+w*bytesPerPixel]
		copy(dst, row)
		if swap {
			for i := 0; i < len(dst); i += bytesPerPixel {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
}

// readbackStride returns the distance between rows in a readback buffer
// of a w pixel wide target. Rows are padded to copyRowAlignment unless the
// device packs them.
func readbackStride(w uint32, packed bool) int {
	if packed {
		return int(w * bytesPerPixel)
	}
	return int(alignUp(w*bytesPerPixel, copyRowAlignment))
}

func swapsRedBlue(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

func alignUp(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}

// Discard implements gpucore.Canvas. The target is reused, so there is
// nothing to drop.
func (c *Canvas) Discard(gpucore.SurfaceTexture) {}

// Snapshot returns a copy of the last presented frame.
func (c *Canvas) Snapshot() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, fmt.Errorf("%w: canvas %q", ErrNothingPresented, c.id)
	}
	img := image.NewRGBA(c.snapshot.Rect)
	copy(img.Pix, c.snapshot.Pix)
	return img, nil
}

// Presented returns the number of frames presented to the canvas.
func (c *Canvas) Presented() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presented
}

// physicalSizer adapts a locked canvas's fields to gpucontext.WindowProvider.
type physicalSizer struct {
	w, h  int
	scale float64
}

func (p physicalSizer) Size() (int, int)     { return p.w, p.h }
func (p physicalSizer) ScaleFactor() float64 { return p.scale }
func (p physicalSizer) RequestRedraw()       {}
