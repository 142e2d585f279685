package notifier

import (
	"context"
	"errors"

	"github.com/gabapcia/btcwatch/internal/blockproc"
)

// Fanout forwards every call to each sink in order. All sinks are called even
// when one fails; the failures are joined.
type Fanout []blockproc.Notifier

var _ blockproc.Notifier = Fanout(nil)

// NewFanout combines sinks, skipping nil ones.
func NewFanout(sinks ...blockproc.Notifier) Fanout {
	f := make(Fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			f = append(f, s)
		}
	}

	return f
}

func (f Fanout) each(call func(blockproc.Notifier) error) error {
	var errs []error
	for _, sink := range f {
		if err := call(sink); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// NotifyTransaction implements blockproc.Notifier.
func (f Fanout) NotifyTransaction(ctx context.Context, n blockproc.Notification) error {
	return f.each(func(s blockproc.Notifier) error {
		return s.NotifyTransaction(ctx, n)
	})
}

// NotifySystemEvent implements blockproc.Notifier.
func (f Fanout) NotifySystemEvent(ctx context.Context, level blockproc.Level, message string, metadata map[string]any) error {
	return f.each(func(s blockproc.Notifier) error {
		return s.NotifySystemEvent(ctx, level, message, metadata)
	})
}

// NotifyMetrics implements blockproc.Notifier.
func (f Fanout) NotifyMetrics(ctx context.Context, m blockproc.Metrics) error {
	return f.each(func(s blockproc.Notifier) error {
		return s.NotifyMetrics(ctx, m)
	})
}
