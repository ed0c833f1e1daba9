// Package transport delivers the server's push events to the dispatcher.
// Sources mirror the pub/sub consumer shape: Subscribe hands back a
// channel that is closed when the context is cancelled or the connection
// is lost.
package transport

import (
	"context"

	"arrsync/internal/events"
)

// Source is a stream of push events.
type Source interface {
	// Subscribe starts delivery and returns the event channel. The channel
	// is closed when ctx is cancelled or the underlying stream ends.
	// Ordering is preserved per connection; no ordering is guaranteed
	// across reconnects.
	Subscribe(ctx context.Context) (<-chan events.Event, error)
}

// DefaultBuffer is the event channel buffer used when a source config
// leaves it unset.
const DefaultBuffer = 64
