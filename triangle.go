package triangle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/device"
	"github.com/gogpu/triangle/failure"
	"github.com/gogpu/triangle/frame"
	"github.com/gogpu/triangle/gpucore"
	"github.com/gogpu/triangle/pipeline"
	"github.com/gogpu/triangle/surface"
)

// App is the entry point. It is created with New, initialized once and then
// run against canvases by identifier.
type App struct {
	opts options

	mu          sync.Mutex
	backend     gpucore.Backend
	initialized bool
}

// New returns an uninitialized App.
func New(opts ...Option) *App {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &App{opts: o}
}

// Initialize selects the backend: the one given with WithBackend, else the
// one named by WithBackendName or TRIANGLE_BACKEND, else the registered
// backend with the highest priority.
//
// Initialize must complete before Run. Calling it again logs a warning and
// returns nil.
func (a *App) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		Logger().WarnContext(ctx, "triangle: already initialized", "backend", a.backend.Name())
		return nil
	}

	b := a.opts.backend
	if b == nil {
		var err error
		b, err = backend.Select(a.opts.backendName)
		if err != nil {
			return failure.Wrap(failure.Entry, failure.ErrNoAdapter, err)
		}
	}
	a.backend = b
	a.initialized = true
	Logger().InfoContext(ctx, "triangle: initialized", "backend", b.Name())
	return nil
}

// Initialized reports whether Initialize has completed.
func (a *App) Initialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// Backend returns the selected backend, or nil before Initialize.
func (a *App) Backend() gpucore.Backend {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.backend
}

func (a *App) mustBackend(op string) gpucore.Backend {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		panic("triangle: " + op + " called before Initialize")
	}
	return a.backend
}

// Run draws one frame into the canvas with the given id.
//
// It resolves the canvas, acquires a device, binds the surface, builds the
// pipeline and draws, then releases everything it acquired. Failures are
// returned unchanged as *failure.Error.
//
// Run panics if Initialize has not completed.
func (a *App) Run(ctx context.Context, canvasID string) error {
	b := a.mustBackend("Run")
	s, err := a.open(ctx, b, canvasID)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Frame(ctx)
}

// Open performs the setup of Run and keeps it alive as a Session, so that
// the host can draw further frames and signal resizes.
//
// Open panics if Initialize has not completed.
func (a *App) Open(ctx context.Context, canvasID string) (*Session, error) {
	return a.open(ctx, a.mustBackend("Open"), canvasID)
}

func (a *App) open(ctx context.Context, b gpucore.Backend, canvasID string) (*Session, error) {
	canvas, err := resolveCanvas(b, canvasID)
	if err != nil {
		return nil, err
	}
	// A zero-size canvas fails before any adapter is requested.
	w, h := canvas.PixelSize()
	if err := surface.CheckSize(canvas, w, h); err != nil {
		return nil, err
	}

	devOpts := append([]device.Option{device.WithCompatibleCanvas(canvas)}, a.opts.device...)
	dc, err := device.Acquire(ctx, b, devOpts...)
	if err != nil {
		return nil, err
	}

	srf, err := surface.Bind(ctx, dc, canvas, a.opts.surface...)
	if err != nil {
		dc.Release()
		return nil, err
	}

	cache := pipeline.NewCache(dc, a.opts.program, pipeline.DefaultCacheSize)
	if _, err := cache.Get(ctx, srf.Format()); err != nil {
		srf.Release()
		dc.Release()
		return nil, err
	}

	return &Session{
		app:      a,
		canvasID: canvasID,
		dc:       dc,
		surface:  srf,
		cache:    cache,
		renderer: frame.New(a.opts.frame...),
	}, nil
}

func resolveCanvas(b gpucore.Backend, id string) (gpucore.Canvas, error) {
	c, err := b.Canvas(id)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, gpucore.ErrNotCanvas):
		return nil, failure.Wrap(failure.Entry, failure.ErrNotCanvas, err)
	case errors.Is(err, gpucore.ErrCanvasNotFound), errors.Is(err, gpucore.ErrNoDocument):
		return nil, failure.Wrap(failure.Entry, failure.ErrTargetNotFound, err)
	default:
		return nil, failure.Wrap(failure.Entry, failure.ErrTargetNotFound,
			fmt.Errorf("resolve canvas %q: %w", id, err))
	}
}

// Session is a bound canvas ready to draw frames. It owns its device,
// surface and pipelines until Close.
//
// Session is NOT thread-safe.
type Session struct {
	app      *App
	canvasID string
	dc       *device.Context
	surface  *surface.Surface
	cache    *pipeline.Cache
	renderer *frame.Renderer
	closed   bool
}

// Frame draws one frame. The pipeline is rebuilt only when the surface
// format has changed since the last frame.
func (s *Session) Frame(ctx context.Context) error {
	if s.closed {
		return failure.New(failure.Entry, failure.ErrSurfaceLost, "session closed")
	}
	p, err := s.cache.Get(ctx, s.surface.Format())
	if err != nil {
		return err
	}
	return s.renderer.Draw(ctx, s.surface, p, s.dc.GPUQueue())
}

// Reconfigure configures the surface for the canvas's current size. The
// host calls it after resizing the canvas.
func (s *Session) Reconfigure(ctx context.Context, opts ...surface.Option) error {
	if s.closed {
		return failure.New(failure.Entry, failure.ErrSurfaceLost, "session closed")
	}
	return s.surface.Reconfigure(ctx, opts...)
}

// Rebind replaces a lost surface: the canvas is resolved again and bound to
// the session's device.
func (s *Session) Rebind(ctx context.Context) error {
	if s.closed {
		return failure.New(failure.Entry, failure.ErrSurfaceLost, "session closed")
	}
	canvas, err := resolveCanvas(s.dc.Backend(), s.canvasID)
	if err != nil {
		return err
	}
	s.surface.Release()
	srf, err := surface.Bind(ctx, s.dc, canvas, s.app.opts.surface...)
	if err != nil {
		return err
	}
	s.surface = srf
	return nil
}

// Surface returns the bound surface.
func (s *Session) Surface() *surface.Surface { return s.surface }

// Device returns the session's device context.
func (s *Session) Device() *device.Context { return s.dc }

// Renderer returns the frame renderer.
func (s *Session) Renderer() *frame.Renderer { return s.renderer }

// Pipelines returns the session's pipeline cache.
func (s *Session) Pipelines() *pipeline.Cache { return s.cache }

// Close releases the pipelines, the surface and the device. It is safe to
// call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cache.Purge()
	s.surface.Release()
	s.dc.Release()
}
