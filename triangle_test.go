package triangle

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/internal/gputest"
	"github.com/gogpu/triangle/shader"
	"github.com/gogpu/triangle/surface"
)

func newApp(t *testing.T, b *gputest.Backend, opts ...Option) *App {
	t.Helper()
	app := New(append([]Option{WithBackend(b)}, opts...)...)
	if err := app.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return app
}

func TestRunBeforeInitializePanics(t *testing.T) {
	app := New(WithBackend(gputest.NewBackend()))
	defer func() {
		r := recover()
		if r != "triangle: Run called before Initialize" {
			t.Errorf("recover() = %v, want the Run-before-Initialize panic", r)
		}
	}()
	_ = app.Run(context.Background(), "canvas-a")
}

func TestInitializeTwice(t *testing.T) {
	b := gputest.NewBackend()
	app := newApp(t, b)
	if err := app.Initialize(context.Background()); err != nil {
		t.Errorf("second Initialize() error = %v, want nil", err)
	}
	if !app.Initialized() || app.Backend() != b {
		t.Error("App not initialized with the given backend")
	}
}

func TestInitializeUnknownBackend(t *testing.T) {
	app := New(WithBackendName("does-not-exist"))
	err := app.Initialize(context.Background())
	if !errors.Is(err, failure.ErrNoAdapter) {
		t.Fatalf("Initialize() error = %v, want ErrNoAdapter", err)
	}
	if app.Initialized() {
		t.Error("App initialized after failure")
	}
}

func TestRun(t *testing.T) {
	b := gputest.NewBackend()
	c := b.AddCanvas("canvas-a", 600, 400)
	app := newApp(t, b)

	if err := app.Run(context.Background(), "canvas-a"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	n := b.Counts()
	if n.DeviceRequests != 1 || n.Pipelines != 1 || n.Draws != 1 || n.Submits != 1 || n.Presents != 1 {
		t.Errorf("counts = %+v, want one device, pipeline, draw, submit and present", n)
	}
	if c.Config() != nil {
		t.Error("Run did not release the surface")
	}

	// The chain was released, so the canvas can be bound again.
	if err := app.Run(context.Background(), "canvas-a"); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *gputest.Backend)
		id    string
		kind  error
		comp  failure.Component
	}{
		{
			name:  "missing canvas",
			setup: func(*gputest.Backend) {},
			id:    "nope",
			kind:  failure.ErrTargetNotFound,
			comp:  failure.Entry,
		},
		{
			name:  "not a canvas",
			setup: func(b *gputest.Backend) { b.AddElement("div") },
			id:    "div",
			kind:  failure.ErrNotCanvas,
			comp:  failure.Entry,
		},
		{
			name:  "no adapter",
			setup: func(b *gputest.Backend) { b.NoAdapter = true; b.AddCanvas("c", 4, 4) },
			id:    "c",
			kind:  failure.ErrNoAdapter,
			comp:  failure.Device,
		},
		{
			name:  "device refused",
			setup: func(b *gputest.Backend) { b.DeviceErr = errors.New("lost"); b.AddCanvas("c", 4, 4) },
			id:    "c",
			kind:  failure.ErrDeviceRequest,
			comp:  failure.Device,
		},
		{
			name:  "backend compile error",
			setup: func(b *gputest.Backend) { b.CompileMessages = []string{"bad"}; b.AddCanvas("c", 4, 4) },
			id:    "c",
			kind:  failure.ErrShaderCompile,
			comp:  failure.Pipeline,
		},
		{
			name:  "submit failure",
			setup: func(b *gputest.Backend) { b.SubmitErr = errors.New("hang"); b.AddCanvas("c", 4, 4) },
			id:    "c",
			kind:  failure.ErrSubmission,
			comp:  failure.Frame,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := gputest.NewBackend()
			tt.setup(b)
			app := newApp(t, b)

			err := app.Run(context.Background(), tt.id)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Run() error = %v, want %v", err, tt.kind)
			}
			f, ok := failure.As(err)
			if !ok || f.Component != tt.comp {
				t.Errorf("Run() error = %v, want component %q", err, tt.comp)
			}
		})
	}
}

func TestRunZeroSizeDoesNoDeviceWork(t *testing.T) {
	for _, size := range [][2]int{{0, 400}, {600, 0}} {
		b := gputest.NewBackend()
		b.AddCanvas("hidden", size[0], size[1])
		app := newApp(t, b)

		err := app.Run(context.Background(), "hidden")
		if !errors.Is(err, failure.ErrInvalidTargetSize) {
			t.Errorf("%v: Run() error = %v, want ErrInvalidTargetSize", size, err)
		}
		if got := failure.KindName(err); got != "InvalidTargetSizeError" {
			t.Errorf("%v: KindName() = %q", size, got)
		}
		if n := b.Counts(); n != (gputest.Counts{}) {
			t.Errorf("%v: backend calls = %+v, want none", size, n)
		}
	}
}

func TestRunShaderErrorIsVerbatim(t *testing.T) {
	b := gputest.NewBackend()
	b.AddCanvas("c", 4, 4)
	const src = "fn vs_main( {"
	p := shader.Program{
		Label:    "broken",
		Vertex:   shader.Entry{Source: src, EntryPoint: shader.VertexEntryPoint},
		Fragment: shader.Entry{Source: src, EntryPoint: shader.FragmentEntryPoint},
	}
	app := newApp(t, b, WithProgram(p))

	err := app.Run(context.Background(), "c")
	f, ok := failure.As(err)
	if !ok || !errors.Is(err, failure.ErrShaderCompile) {
		t.Fatalf("Run() error = %v, want ErrShaderCompile", err)
	}
	if f.Diagnostic == "" {
		t.Error("Diagnostic is empty")
	}
	if n := b.Counts(); n.ShaderModules != 0 {
		t.Errorf("shader modules created: %d", n.ShaderModules)
	}
}

func TestSessionFormatChangeRebuildsPipeline(t *testing.T) {
	b := gputest.NewBackend()
	b.AddCanvas("c", 4, 4)
	app := newApp(t, b)
	ctx := context.Background()

	s, err := app.Open(ctx, "c")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := s.Frame(ctx); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	if s.Pipelines().Builds() != 1 {
		t.Errorf("pipeline built %d times for one format", s.Pipelines().Builds())
	}

	if err := s.Reconfigure(ctx, surface.WithFormat(gputypes.TextureFormatRGBA8Unorm)); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if err := s.Frame(ctx); err != nil {
		t.Fatalf("Frame() after format change error = %v", err)
	}
	if s.Pipelines().Builds() != 2 {
		t.Errorf("pipeline builds = %d, want 2 after format change", s.Pipelines().Builds())
	}
	if s.Renderer().Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", s.Renderer().Frames())
	}
}

func TestSessionResize(t *testing.T) {
	b := gputest.NewBackend()
	c := b.AddCanvas("c", 600, 400)
	app := newApp(t, b)
	ctx := context.Background()

	s, err := app.Open(ctx, "c")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	c.Resize(800, 600)
	if err := s.Frame(ctx); !errors.Is(err, failure.ErrOutdatedSurface) {
		t.Fatalf("Frame() error = %v, want outdated surface", err)
	}
	if err := s.Reconfigure(ctx); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if err := s.Frame(ctx); err != nil {
		t.Fatalf("Frame() after Reconfigure error = %v", err)
	}
	if w, h := s.Surface().Size(); w != 800 || h != 600 {
		t.Errorf("surface size = %dx%d, want 800x600", w, h)
	}
}

func TestSessionRebind(t *testing.T) {
	b := gputest.NewBackend()
	c := b.AddCanvas("c", 4, 4)
	app := newApp(t, b)
	ctx := context.Background()

	s, err := app.Open(ctx, "c")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	c.AcquireErr = errors.New("context lost")
	if err := s.Frame(ctx); !errors.Is(err, failure.ErrSurfaceLost) {
		t.Fatalf("Frame() error = %v, want ErrSurfaceLost", err)
	}
	c.AcquireErr = nil
	if err := s.Rebind(ctx); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if err := s.Frame(ctx); err != nil {
		t.Fatalf("Frame() after Rebind error = %v", err)
	}

	s.Close()
	if err := s.Frame(ctx); !errors.Is(err, failure.ErrSurfaceLost) {
		t.Errorf("Frame() after Close error = %v, want ErrSurfaceLost", err)
	}
}
