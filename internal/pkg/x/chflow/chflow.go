// Package chflow provides context-aware channel helpers, so blocking waits in
// loops give up as soon as their context is canceled.
package chflow

import (
	"context"
	"time"
)

// Receive waits for a value from ch or for ctx to be done. The boolean is
// false when ctx ended first or ch was closed; the value is then the zero value.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Sleep pauses for d unless ctx is done first, in which case it returns false.
// A non-positive d returns immediately with the context's state.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	_, ok := Receive(ctx, timer.C)
	return ok
}
