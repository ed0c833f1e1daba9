// Package websocket implements the transport source over the server's
// websocket event feed.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arrsync/internal/events"
	"arrsync/internal/transport"
)

const (
	// Time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from the peer.
	maxMessageSize = 64 * 1024
)

// Config configures the websocket source.
type Config struct {
	// URL is the ws:// or wss:// endpoint of the event feed.
	URL string
	// APIKey is sent on the handshake via the X-API-KEY header.
	APIKey string
	// HandshakeTimeout bounds the dial. Zero means 10s.
	HandshakeTimeout time.Duration
	// Buffer is the event channel size. Zero means transport.DefaultBuffer.
	Buffer int
}

// Source dials the feed once per Subscribe call and pumps events until the
// connection drops. Reconnect policy belongs to the caller: a dial failure
// is returned as an error, a lost connection ends the stream with a
// synthesized disconnect event.
type Source struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a websocket Source.
func New(cfg Config, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{cfg: cfg, logger: logger}
}

// Subscribe dials the feed and starts the read pump. A connect event is
// synthesized once the handshake completes; a disconnect event is the last
// one delivered before the channel closes.
func (s *Source) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	timeout := s.cfg.HandshakeTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}

	header := http.Header{}
	if s.cfg.APIKey != "" {
		header.Set("X-API-KEY", s.cfg.APIKey)
	}

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("dialing event feed: %w", err)
	}

	buffer := s.cfg.Buffer
	if buffer <= 0 {
		buffer = transport.DefaultBuffer
	}
	ch := make(chan events.Event, buffer)

	go s.writePump(ctx, conn)
	go s.readPump(ctx, conn, ch)

	return ch, nil
}

// readPump pumps frames from the connection into the event channel. There
// is at most one reader per connection.
func (s *Source) readPump(ctx context.Context, conn *websocket.Conn, ch chan<- events.Event) {
	defer func() {
		conn.Close()
		s.deliver(ctx, ch, events.Event{Key: events.KeyDisconnect})
		close(ch)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	s.deliver(ctx, ch, events.Event{Key: events.KeyConnect})
	s.logger.Info("event feed connected", "url", s.cfg.URL)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("event feed closed unexpectedly", "error", err)
			} else {
				s.logger.Info("event feed closed")
			}
			return
		}

		var e events.Event
		if err := json.Unmarshal(frame, &e); err != nil {
			s.logger.Warn("skipping malformed event frame", "error", err)
			continue
		}
		if !e.Key.IsValid() {
			// Forwarded anyway; dropping unknown keys is the dispatcher's
			// call, not the transport's.
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

// writePump keeps the connection alive with pings and closes it when the
// context is cancelled, which unblocks the read pump.
func (s *Source) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
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
