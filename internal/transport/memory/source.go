// Package memory provides a channel-backed transport source for tests and
// embedded use. It mirrors the websocket source's delivery semantics
// without a network.
package memory

import (
	"context"
	"sync"

	"arrsync/internal/events"
	"arrsync/internal/transport"
)

// Source is an in-process event source. Publish feeds events to whatever
// Subscribe returned.
type Source struct {
	in   chan events.Event
	once sync.Once
}

// New creates a memory Source. A non-positive buffer falls back to
// transport.DefaultBuffer.
func New(buffer int) *Source {
	if buffer <= 0 {
		buffer = transport.DefaultBuffer
	}
	return &Source{in: make(chan events.Event, buffer)}
}

// Publish delivers one event to the subscriber. It blocks when the buffer
// is full and must not be called after Close.
func (s *Source) Publish(e events.Event) {
	s.in <- e
}

// Close ends the stream. Safe to call more than once.
func (s *Source) Close() {
	s.once.Do(func() {
		close(s.in)
	})
}

// Subscribe returns the event channel. The returned channel closes when
// ctx is cancelled or Close is called.
func (s *Source) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	out := make(chan events.Event)
	go func() {
		defer close(out)
		for {
			select {
			case e, ok := <-s.in:
				if !ok {
					return
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
