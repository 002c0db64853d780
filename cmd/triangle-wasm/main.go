//go:build js && wasm

// Command triangle-wasm exposes the triangle bootstrap to JavaScript.
//
// It installs two functions on globalThis:
//
//	await triangleInit();
//	await triangleRun("canvas-a");
//
// Both return Promises. A failed call rejects with a plain object
// {component, kind, message, diagnostic}.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/gogpu/triangle"
	_ "github.com/gogpu/triangle/backend/browser"
	"github.com/gogpu/triangle/failure"
)

// kindNotInitialized is reported when triangleRun is called before
// triangleInit has resolved.
const kindNotInitialized = "NotInitialized"

func main() {
	if os.Getenv("TRIANGLE_DEBUG") != "" {
		triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	app := triangle.New(triangle.WithBackendName("browser"))

	js.Global().Set("triangleInit", js.FuncOf(func(this js.Value, args []js.Value) any {
		return promise(func(ctx context.Context) error {
			return app.Initialize(ctx)
		})
	}))
	js.Global().Set("triangleRun", js.FuncOf(func(this js.Value, args []js.Value) any {
		id := ""
		if len(args) > 0 && args[0].Type() == js.TypeString {
			id = args[0].String()
		}
		return promise(func(ctx context.Context) error {
			if !app.Initialized() {
				return errNotInitialized
			}
			return app.Run(ctx, id)
		})
	}))

	select {}
}

var errNotInitialized = errors.New("triangleRun called before triangleInit resolved")

// promise runs fn on its own goroutine and returns a Promise settled with
// its result. Awaiting other promises from a js.Func callback would
// deadlock the event loop.
func promise(fn func(ctx context.Context) error) js.Value {
	var executor js.Func
	executor = js.FuncOf(func(this js.Value, args []js.Value) any {
		defer executor.Release()
		resolve, reject := args[0], args[1]
		go func() {
			if err := fn(context.Background()); err != nil {
				reject.Invoke(rejection(err))
				return
			}
			resolve.Invoke(js.Undefined())
		}()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

// rejection converts err to the object a rejected Promise carries.
func rejection(err error) map[string]any {
	if errors.Is(err, errNotInitialized) {
		return map[string]any{
			"component":  string(failure.Entry),
			"kind":       kindNotInitialized,
			"message":    err.Error(),
			"diagnostic": "",
		}
	}
	obj := map[string]any{
		"component":  "",
		"kind":       failure.KindName(err),
		"message":    err.Error(),
		"diagnostic": "",
	}
	if f, ok := failure.As(err); ok {
		obj["component"] = string(f.Component)
		obj["diagnostic"] = f.Diagnostic
	}
	return obj
}
