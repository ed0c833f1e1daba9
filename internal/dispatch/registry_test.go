package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrsync/internal/events"
)

func noop(ctx context.Context, e events.Event) {}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(events.KeySeries, Handlers{Update: noop, Delete: noop}))
	require.NoError(t, r.Register(events.KeyBadges, Handlers{Any: noop}))

	h, ok := r.Lookup(events.KeySeries)
	require.True(t, ok)
	assert.NotNil(t, h.Update)
	assert.NotNil(t, h.Delete)
	assert.Nil(t, h.Any)

	_, ok = r.Lookup(events.KeyMovie)
	assert.False(t, ok)
}

func TestRegistry_DuplicateKey(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(events.KeySeries, Handlers{Any: noop}))

	err := r.Register(events.KeySeries, Handlers{Update: noop})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestRegistry_ConflictingVariants(t *testing.T) {
	r := NewRegistry()

	err := r.Register(events.KeySeries, Handlers{Any: noop, Update: noop})
	assert.ErrorIs(t, err, ErrConflictingVariants)

	err = r.Register(events.KeySeries, Handlers{Any: noop, Delete: noop})
	assert.ErrorIs(t, err, ErrConflictingVariants)

	// The failed registrations left nothing behind.
	_, ok := r.Lookup(events.KeySeries)
	assert.False(t, ok)
}

func TestRegistry_EmptyHandlers(t *testing.T) {
	r := NewRegistry()
	err := r.Register(events.KeySeries, Handlers{})
	assert.ErrorIs(t, err, ErrNoHandlers)
}
