//go:build !(js && wasm)

package native

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/gpucore"
)

func TestRegistered(t *testing.T) {
	if backend.Get(backend.BackendNative) != Default() {
		t.Error("native backend not registered")
	}
}

func TestDocumentLookup(t *testing.T) {
	b := New()
	doc := b.Document()
	doc.AddCanvas("canvas-a", 600, 400)
	doc.AddElement("status", "div")

	c, err := b.Canvas("canvas-a")
	if err != nil {
		t.Fatalf("Canvas(canvas-a) error = %v", err)
	}
	if w, h := c.PixelSize(); w != 600 || h != 400 {
		t.Errorf("PixelSize() = %dx%d, want 600x400", w, h)
	}
	if _, err := b.Canvas("status"); !errors.Is(err, gpucore.ErrNotCanvas) {
		t.Errorf("Canvas(status) error = %v, want ErrNotCanvas", err)
	}
	if _, err := b.Canvas("missing"); !errors.Is(err, gpucore.ErrCanvasNotFound) {
		t.Errorf("Canvas(missing) error = %v, want ErrCanvasNotFound", err)
	}

	doc.AddElement("canvas-a", "img")
	if _, err := b.Canvas("canvas-a"); !errors.Is(err, gpucore.ErrNotCanvas) {
		t.Errorf("replaced element: error = %v, want ErrNotCanvas", err)
	}
	doc.Remove("status")
	if got := doc.IDs(); len(got) != 1 || got[0] != "canvas-a" {
		t.Errorf("IDs() = %v, want [canvas-a]", got)
	}
}

func TestCanvasScaleFactor(t *testing.T) {
	c := NewDocument().AddCanvas("c", 300, 200)
	c.SetScaleFactor(2)
	if w, h := c.Size(); w != 300 || h != 200 {
		t.Errorf("Size() = %dx%d, want logical 300x200", w, h)
	}
	if w, h := c.PixelSize(); w != 600 || h != 400 {
		t.Errorf("PixelSize() = %dx%d, want 600x400", w, h)
	}
}

func TestCanvasCapabilities(t *testing.T) {
	c := NewDocument().AddCanvas("c", 1, 1)
	caps := c.Capabilities()
	if caps.Formats[0] != c.PreferredFormat() {
		t.Errorf("first format %v is not the preferred format %v", caps.Formats[0], c.PreferredFormat())
	}
	if len(caps.PresentModes) != 1 || caps.PresentModes[0] != gputypes.PresentModeFifo {
		t.Errorf("PresentModes = %v, want [Fifo]", caps.PresentModes)
	}
}

func TestCanvasLostAndUnconfigured(t *testing.T) {
	c := NewDocument().AddCanvas("c", 4, 4)
	if _, err := c.CurrentTexture(); !errors.Is(err, gpucore.ErrNotConfigured) {
		t.Errorf("CurrentTexture() error = %v, want ErrNotConfigured", err)
	}
	c.Lose()
	if _, err := c.CurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceLost) {
		t.Errorf("CurrentTexture() error = %v, want ErrSurfaceLost", err)
	}
	if err := c.Present(context.Background(), nil); !errors.Is(err, gpucore.ErrSurfaceLost) {
		t.Errorf("Present() error = %v, want ErrSurfaceLost", err)
	}
	if _, err := c.Snapshot(); !errors.Is(err, ErrNothingPresented) {
		t.Errorf("Snapshot() error = %v, want ErrNothingPresented", err)
	}
}

func TestUnpack(t *testing.T) {
	const stride = 256
	src := make([]byte, stride*2)
	copy(src[0:], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(src[stride:], []byte{9, 10, 11, 12, 13, 14, 15, 16})

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	unpack(img, src, stride, false)
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if string(img.Pix) != string(want) {
		t.Errorf("unpack() = %v, want %v", img.Pix, want)
	}

	unpack(img, src, stride, true)
	want = []byte{3, 2, 1, 4, 7, 6, 5, 8, 11, 10, 9, 12, 15, 14, 13, 16}
	if string(img.Pix) != string(want) {
		t.Errorf("unpack(swap) = %v, want %v", img.Pix, want)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ n, want uint32 }{{0, 0}, {1, 256}, {256, 256}, {2400, 2560}}
	for _, tt := range tests {
		if got := alignUp(tt.n, copyRowAlignment); got != tt.want {
			t.Errorf("alignUp(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestReadbackStride(t *testing.T) {
	tests := []struct {
		w      uint32
		packed bool
		want   int
	}{
		{600, false, 2560},
		{600, true, 2400},
		{64, false, 256},
		{64, true, 256},
		{8, true, 32},
	}
	for _, tt := range tests {
		if got := readbackStride(tt.w, tt.packed); got != tt.want {
			t.Errorf("readbackStride(%d, %v) = %d, want %d", tt.w, tt.packed, got, tt.want)
		}
	}
}

func TestUnpackPackedRows(t *testing.T) {
	// Three 3-pixel rows written back to back, as the software adapter copies.
	const w, h = 3, 3
	src := make([]byte, w*h*bytesPerPixel)
	for i := range src {
		src[i] = byte(i)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	unpack(img, src, readbackStride(w, true), false)
	if string(img.Pix) != string(src) {
		t.Errorf("unpack() = %v, want %v", img.Pix, src)
	}
}

// newSoftwareDevice returns a device on the software adapter, skipping the
// test when the host cannot provide one.
func newSoftwareDevice(t *testing.T, b *Backend) *Device {
	t.Helper()
	ctx := context.Background()
	a, err := b.RequestAdapter(ctx, &gpucore.AdapterOptions{ForceFallbackAdapter: true})
	if err != nil {
		t.Skipf("no software adapter: %v", err)
	}
	t.Cleanup(a.Release)
	d, err := a.RequestDevice(ctx, &gpucore.DeviceDescriptor{Label: "test device"})
	if err != nil {
		t.Skipf("cannot request device: %v", err)
	}
	t.Cleanup(d.Release)
	if d.Queue() == nil {
		t.Skip("device has no HAL queue")
	}
	if !d.(*Device).packedCopies {
		t.Error("software device does not report packed copies")
	}
	return d.(*Device)
}

func TestPresentClearedFrame(t *testing.T) {
	b := New()
	t.Cleanup(b.Close)
	dev := newSoftwareDevice(t, b)
	// 600*4 bytes per row is not a multiple of the copy row alignment.
	c := b.Document().AddCanvas("c", 600, 400)

	err := c.Configure(dev, &gpucore.SurfaceConfiguration{
		Format:      gputypes.TextureFormatRGBA8Unorm,
		Usage:       gputypes.TextureUsageRenderAttachment,
		Width:       600,
		Height:      400,
		PresentMode: gputypes.PresentModeFifo,
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	defer c.Unconfigure()

	tex, err := c.CurrentTexture()
	if err != nil {
		t.Fatalf("CurrentTexture() error = %v", err)
	}
	enc, err := dev.CreateCommandEncoder("clear")
	if err != nil {
		t.Fatalf("CreateCommandEncoder() error = %v", err)
	}
	pass, err := enc.BeginRenderPass(&gpucore.RenderPassDescriptor{
		ColorAttachments: []gpucore.ColorAttachment{{
			View:       tex.View(),
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 1, G: 0, B: 0, A: 1},
		}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass() error = %v", err)
	}
	if err := pass.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	cmd, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if err := dev.Queue().Submit(context.Background(), cmd); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := c.Present(context.Background(), tex); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	img, err := c.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	for _, p := range []image.Point{{0, 0}, {599, 0}, {3, 2}, {300, 200}, {0, 399}, {599, 399}} {
		if got := img.RGBAAt(p.X, p.Y); got.R < 254 || got.G > 1 || got.B > 1 || got.A < 254 {
			t.Errorf("pixel %v = %v, want red", p, got)
		}
	}
	if c.Presented() != 1 {
		t.Errorf("Presented() = %d, want 1", c.Presented())
	}

	c.Resize(640, 400)
	if _, err := c.CurrentTexture(); !errors.Is(err, gpucore.ErrSurfaceOutdated) {
		t.Errorf("CurrentTexture() after resize error = %v, want ErrSurfaceOutdated", err)
	}
}
