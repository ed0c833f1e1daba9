// Package nats implements the transport source over a NATS subject, for
// deployments that bridge the server's event feed through a broker.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"arrsync/internal/events"
	"arrsync/internal/transport"
)

// Config configures the NATS source.
type Config struct {
	// Subject is the subject carrying event envelopes.
	Subject string
	// Buffer is the event channel size. Zero means transport.DefaultBuffer.
	Buffer int
}

// Source consumes event envelopes from a NATS subject. The connection is
// owned by the caller.
type Source struct {
	nc     *nats.Conn
	cfg    Config
	logger *slog.Logger
}

// New creates a NATS Source over an existing connection.
func New(nc *nats.Conn, cfg Config, logger *slog.Logger) (*Source, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection cannot be nil")
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{nc: nc, cfg: cfg, logger: logger}, nil
}

// Subscribe starts consuming the subject. Raw messages are handed to a
// single pump goroutine that decodes, delivers, and closes the event
// channel; nothing else ever writes to it. A connect event is synthesized
// once the subscription is live so the connectivity handlers fire the same
// way they do for the websocket source.
func (s *Source) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	buffer := s.cfg.Buffer
	if buffer <= 0 {
		buffer = transport.DefaultBuffer
	}

	msgs := make(chan *nats.Msg, buffer)
	sub, err := s.nc.ChanSubscribe(s.cfg.Subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", s.cfg.Subject, err)
	}
	s.logger.Info("event feed subscribed", "subject", s.cfg.Subject)

	ch := make(chan events.Event, buffer)
	go s.pump(ctx, msgs, sub.Unsubscribe, ch)

	return ch, nil
}

// pump is the sole writer to ch and the only goroutine that closes it, so
// cancellation can never race a delivery into a closed channel.
func (s *Source) pump(ctx context.Context, msgs <-chan *nats.Msg, unsub func() error, ch chan<- events.Event) {
	defer func() {
		if err := unsub(); err != nil {
			s.logger.Warn("unsubscribe failed", "subject", s.cfg.Subject, "error", err)
		}
		close(ch)
	}()

	if !s.deliver(ctx, ch, events.Event{Key: events.KeyConnect}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var e events.Event
			if err := json.Unmarshal(msg.Data, &e); err != nil {
				s.logger.Warn("skipping malformed event message", "subject", msg.Subject, "error", err)
				continue
			}
			if !e.Key.IsValid() {
				s.logger.Debug("event with unknown key", "key", e.Key)
			}
			if e.Kind != "" && !e.Kind.IsValid() {
				s.logger.Debug("event with unknown kind", "key", e.Key, "kind", e.Kind)
			}
			if !s.deliver(ctx, ch, e) {
				return
			}
		}
	}
}

func (s *Source) deliver(ctx context.Context, ch chan<- events.Event, e events.Event) bool {
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
