//go:build js && wasm

package browser

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"
)

// await blocks until the promise v settles or ctx is done. Values that are
// not thenable are returned unchanged.
func await(ctx context.Context, v js.Value) (js.Value, error) {
	if v.Type() != js.TypeObject || v.Get("then").Type() != js.TypeFunction {
		return v, nil
	}

	type settled struct {
		value js.Value
		ok    bool
	}
	done := make(chan settled, 1)

	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- settled{value: arg0(args), ok: true}
		return nil
	})
	defer onResolve.Release()

	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- settled{value: arg0(args)}
		return nil
	})
	defer onReject.Release()

	v.Call("then", onResolve, onReject)

	select {
	case s := <-done:
		if !s.ok {
			return js.Undefined(), jsError(s.value)
		}
		return s.value, nil
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func arg0(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

// jsError converts a rejection reason or a GPUError to a Go error.
func jsError(v js.Value) error {
	switch {
	case v.IsUndefined() || v.IsNull():
		return errors.New("browser: promise rejected")
	case v.Type() == js.TypeObject && v.Get("message").Type() == js.TypeString:
		name := v.Get("name")
		if name.Type() == js.TypeString && name.String() != "" {
			return fmt.Errorf("browser: %s: %s", name.String(), v.Get("message").String())
		}
		return fmt.Errorf("browser: %s", v.Get("message").String())
	default:
		return fmt.Errorf("browser: %s", v.String())
	}
}

// exists reports whether v holds a value.
func exists(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}
