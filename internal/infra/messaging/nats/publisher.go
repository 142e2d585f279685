// Package nats publishes watcher notifications to NATS subjects as JSON.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gabapcia/btcwatch/internal/blockproc"
	"github.com/gabapcia/btcwatch/internal/pkg/logger"

	"github.com/nats-io/nats.go"
)

// Event kinds, appended to the base subject.
const (
	KindTransaction = "transaction"
	KindSystem      = "system"
	KindMetrics     = "metrics"
)

// event is the envelope published for every notification.
type event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// systemEvent is the data of a KindSystem event.
type systemEvent struct {
	Level    blockproc.Level `json:"level"`
	Message  string          `json:"message"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher implements blockproc.Notifier on top of a NATS connection.
type Publisher struct {
	conn    conn
	subject string
	now     func() time.Time
}

var _ blockproc.Notifier = (*Publisher)(nil)

// Connect dials url and returns a Publisher using subject as the base
// subject. The connection reconnects forever.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("btcwatch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn(context.Background(), "disconnected from NATS", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(context.Background(), "reconnected to NATS", "nats.url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return newPublisher(nc, subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	return &Publisher{
		conn:    c,
		subject: subject,
		now:     time.Now,
	}
}

// Subject returns the subject events of the given kind are published on.
func (p *Publisher) Subject(kind string) string {
	return p.subject + "." + kind
}

func (p *Publisher) publish(kind string, data any) error {
	payload, err := json.Marshal(event{
		Type:      kind,
		Timestamp: p.now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", kind, err)
	}

	if err := p.conn.Publish(p.Subject(kind), payload); err != nil {
		return fmt.Errorf("publishing %s event: %w", kind, err)
	}

	return nil
}

// NotifyTransaction implements blockproc.Notifier.
func (p *Publisher) NotifyTransaction(_ context.Context, n blockproc.Notification) error {
	return p.publish(KindTransaction, n)
}

// NotifySystemEvent implements blockproc.Notifier.
func (p *Publisher) NotifySystemEvent(_ context.Context, level blockproc.Level, message string, metadata map[string]any) error {
	return p.publish(KindSystem, systemEvent{Level: level, Message: message, Metadata: metadata})
}

// NotifyMetrics implements blockproc.Notifier.
func (p *Publisher) NotifyMetrics(_ context.Context, m blockproc.Metrics) error {
	return p.publish(KindMetrics, m)
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
