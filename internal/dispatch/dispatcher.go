package dispatch

import (
	"context"
	"log/slog"

	"arrsync/internal/events"
)

// Dispatcher selects and invokes the handler variant for each incoming
// event. It is stateless between calls; the only state lives in the cache
// and the connectivity status, both behind the handlers.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher over a frozen registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch routes one event.
//
// Unknown keys are dropped silently: the server may emit keys this client
// does not handle yet, and that is expected, not an error. An Any handler
// matches regardless of kind; otherwise the variant matching the kind is
// invoked, and a missing variant drops the event. Handler panics are
// recovered and logged so one bad event can never halt the stream.
func (d *Dispatcher) Dispatch(ctx context.Context, e events.Event) {
	h, ok := d.registry.Lookup(e.Key)
	if !ok {
		d.logger.Debug("no handler for event key", "key", e.Key)
		return
	}

	fn := h.Any
	if fn == nil {
		switch e.Kind {
		case events.KindUpdate:
			fn = h.Update
		case events.KindDelete:
			fn = h.Delete
		}
	}
	if fn == nil {
		d.logger.Debug("no handler variant for event kind", "key", e.Key, "kind", e.Kind)
		return
	}

	d.invoke(ctx, e, fn)
}

func (d *Dispatcher) invoke(ctx context.Context, e events.Event, fn HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				"key", e.Key,
				"kind", e.Kind,
				"panic", r,
			)
		}
	}()
	fn(ctx, e)
}
