// Copyright (C) 2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package profile records runtime profiles of the checker, so that a
// slow or memory-hungry chunk size can be investigated with `go tool
// pprof`.
package profile

import (
	"fmt"
	"io"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

type StopFunc = func() error

// Kind is something that the Go runtime can record.
type Kind string

const (
	// KindCPU and KindTrace are recorded from Start until the
	// StopFunc is called.
	KindCPU   Kind = "cpu"
	KindTrace Kind = "trace"

	// The rest are named pprof profiles, which are snapshotted
	// when the StopFunc is called.
	KindHeap      Kind = "heap"
	KindAllocs    Kind = "allocs"
	KindGoroutine Kind = "goroutine"
	KindBlock     Kind = "block"
	KindMutex     Kind = "mutex"
)

// Kinds lists every Kind that Start accepts, in the order that flags
// are registered.
func Kinds() []Kind {
	return []Kind{KindCPU, KindTrace, KindHeap, KindAllocs, KindGoroutine, KindBlock, KindMutex}
}

// Start begins recording kind to w, and returns a function that
// finishes the recording; it does not close w.
func Start(kind Kind, w io.Writer) (StopFunc, error) {
	switch kind {
	case KindCPU:
		if err := pprof.StartCPUProfile(w); err != nil {
			return nil, err
		}
		return func() error {
			pprof.StopCPUProfile()
			return nil
		}, nil
	case KindTrace:
		if err := trace.Start(w); err != nil {
			return nil, err
		}
		return func() error {
			trace.Stop()
			return nil
		}, nil
	case KindBlock:
		runtime.SetBlockProfileRate(1)
		return snapshot(w, kind, func() { runtime.SetBlockProfileRate(0) }), nil
	case KindMutex:
		old := runtime.SetMutexProfileFraction(1)
		return snapshot(w, kind, func() { runtime.SetMutexProfileFraction(old) }), nil
	case KindHeap, KindAllocs, KindGoroutine:
		return snapshot(w, kind, nil), nil
	default:
		return nil, fmt.Errorf("profile: unknown kind %q", kind)
	}
}

func snapshot(w io.Writer, kind Kind, cleanup func()) StopFunc {
	return func() error {
		if cleanup != nil {
			defer cleanup()
		}
		if kind == KindHeap || kind == KindAllocs {
			// Make the numbers reflect the most recent state
			// rather than the state as of the last GC.
			runtime.GC()
		}
		prof := pprof.Lookup(string(kind))
		if prof == nil {
			return fmt.Errorf("profile: no %q profile", kind)
		}
		return prof.WriteTo(w, 0)
	}
}
