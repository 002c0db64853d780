// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface binds a canvas to a device as a presentable surface.
//
// A Surface is configured from the canvas's size at bind time and holds an
// exclusive claim on the canvas until Release. The host signals resizes by
// calling Reconfigure; Acquire fails with an outdated-surface error when the
// canvas size no longer matches the configuration.
//
// Example usage:
//
//	s, err := surface.Bind(ctx, dc, canvas)
//	if err != nil {
//		return err
//	}
//	defer s.Release()
//
//	f, err := s.Acquire()
//	...
//	err = s.Present(ctx, f)
package surface
