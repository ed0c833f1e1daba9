// Package dispatch routes push events to their registered handlers and
// reconciles the client cache: prefix invalidation for most resources, a
// partial merge for the high-rate jobs list.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"arrsync/internal/events"
)

var (
	// ErrDuplicateKey is returned when an event key is registered twice.
	ErrDuplicateKey = errors.New("event key already registered")
	// ErrConflictingVariants is returned when a handler set supplies Any
	// together with Update or Delete.
	ErrConflictingVariants = errors.New("any handler conflicts with update/delete")
	// ErrNoHandlers is returned when a handler set is empty.
	ErrNoHandlers = errors.New("handler set is empty")
)

// HandlerFunc reacts to one event. Handlers own their failure handling;
// anything that escapes is recovered at the dispatch boundary.
type HandlerFunc func(ctx context.Context, e events.Event)

// Handlers is the set of variant handlers for one event key. Any is a
// catch-all and is mutually exclusive with Update/Delete.
type Handlers struct {
	Any    HandlerFunc
	Update HandlerFunc
	Delete HandlerFunc
}

// Registry maps event keys to handler sets. It is built once at startup
// and never mutated afterwards, so lookups need no synchronization.
type Registry struct {
	table map[events.Key]Handlers
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[events.Key]Handlers)}
}

// Register adds a handler set for key. Duplicate keys and conflicting
// variants are configuration errors, surfaced here at startup rather than
// at dispatch time.
func (r *Registry) Register(key events.Key, h Handlers) error {
	if h.Any == nil && h.Update == nil && h.Delete == nil {
		return fmt.Errorf("%s: %w", key, ErrNoHandlers)
	}
	if h.Any != nil && (h.Update != nil || h.Delete != nil) {
		return fmt.Errorf("%s: %w", key, ErrConflictingVariants)
	}
	if _, exists := r.table[key]; exists {
		return fmt.Errorf("%s: %w", key, ErrDuplicateKey)
	}
	r.table[key] = h
	return nil
}

// Lookup returns the handler set registered for key.
func (r *Registry) Lookup(key events.Key) (Handlers, bool) {
	h, ok := r.table[key]
	return h, ok
}
