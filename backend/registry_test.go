package backend

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/triangle/gpucore"
)

type stubBackend struct {
	name   string
	logger *slog.Logger
}

func (b *stubBackend) Name() string { return b.name }

func (b *stubBackend) Canvas(string) (gpucore.Canvas, error) {
	return nil, gpucore.ErrCanvasNotFound
}

func (b *stubBackend) RequestAdapter(context.Context, *gpucore.AdapterOptions) (gpucore.Adapter, error) {
	return nil, gpucore.ErrNoAdapter
}

func (b *stubBackend) SetLogger(l *slog.Logger) { b.logger = l }

func register(t *testing.T, name string) *stubBackend {
	t.Helper()
	b := &stubBackend{name: name}
	Register(name, func() gpucore.Backend { return b })
	t.Cleanup(func() { Unregister(name) })
	return b
}

func TestRegistryGet(t *testing.T) {
	b := register(t, "stub-get")

	if !IsRegistered("stub-get") {
		t.Fatal("IsRegistered(stub-get) = false")
	}
	if got := Get("stub-get"); got != b {
		t.Errorf("Get() = %v, want registered instance", got)
	}
	if got := Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
}

func TestRegistryPriority(t *testing.T) {
	if IsRegistered(BackendNative) || IsRegistered(BackendBrowser) {
		t.Skip("real backends linked into this test binary")
	}
	native := register(t, BackendNative)
	if Default() != native {
		t.Errorf("Default() = %v, want native", Default())
	}
	browser := register(t, BackendBrowser)
	if Default() != browser {
		t.Errorf("Default() = %v, want browser", Default())
	}
	if DefaultName() != BackendBrowser {
		t.Errorf("DefaultName() = %q, want %q", DefaultName(), BackendBrowser)
	}
}

func TestSelect(t *testing.T) {
	b := register(t, "stub-select")

	got, err := Select("stub-select")
	if err != nil || got != b {
		t.Errorf("Select(stub-select) = %v, %v", got, err)
	}
	if _, err := Select("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Select(missing) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestPropagateLogger(t *testing.T) {
	b := register(t, "stub-logger")
	l := slog.New(slog.DiscardHandler)

	PropagateLogger(l)
	if b.logger != l {
		t.Error("PropagateLogger did not reach the backend")
	}
}

func TestMustDefaultPanicsWhenEmpty(t *testing.T) {
	if len(Available()) > 0 {
		t.Skip("backends registered")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustDefault() did not panic")
		}
	}()
	MustDefault()
}
