package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrsync/internal/cache"
	"arrsync/internal/events"
	"arrsync/internal/notify"
	"arrsync/pkg/model"
)

// recordingStore implements cache.Store and records invalidations.
type recordingStore struct {
	*cache.Memory
	invalidated []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Memory: cache.NewMemory()}
}

func (s *recordingStore) Invalidate(prefix cache.Key) {
	s.invalidated = append(s.invalidated, prefix.String())
	s.Memory.Invalidate(prefix)
}

// recordingSink implements notify.Sink.
type recordingSink struct {
	shown   []notify.Notification
	cleared int
}

func (s *recordingSink) Show(n notify.Notification) { s.shown = append(s.shown, n) }
func (s *recordingSink) ClearAll()                  { s.cleared++ }

func newTestTable(t *testing.T) (*Dispatcher, *recordingStore, *recordingSink, *notify.Status) {
	t.Helper()
	store := newRecordingStore()
	sink := &recordingSink{}
	status := notify.NewStatus()
	jobs := NewJobReconciler(store, stubFetcher{}, nil)

	registry, err := Table(Deps{
		Cache:    store,
		Jobs:     jobs,
		Notifier: sink,
		Status:   status,
	})
	require.NoError(t, err)
	return NewDispatcher(registry, nil), store, sink, status
}

type stubFetcher struct{}

func (stubFetcher) JobsByID(ctx context.Context, id int64) ([]model.JobRecord, error) {
	return nil, nil
}

func TestTable_RegistersWithoutError(t *testing.T) {
	d, _, _, _ := newTestTable(t)
	assert.NotNil(t, d)
}

func TestTable_SeriesInvalidatesPerID(t *testing.T) {
	d, store, _, _ := newTestTable(t)

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeySeries, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[7, 9]`),
	})

	assert.Equal(t, []string{"series/7", "series/9"}, store.invalidated)
}

func TestTable_PerIDLeavesCollectionViewsWarm(t *testing.T) {
	d, store, _, _ := newTestTable(t)
	store.Set(cache.K("series", "list"), []string{"cached view"})
	store.Set(cache.K("series", "7"), "entity")

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeySeries, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[7]`),
	})

	// Only the entity key goes stale on a per-id update.
	_, ok := store.Get(cache.K("series", "7"))
	assert.False(t, ok)
	_, ok = store.Get(cache.K("series", "list"))
	assert.True(t, ok)

	// An id-less event refreshes the whole prefix, the view included.
	d.Dispatch(context.Background(), events.Event{Key: events.KeySeries, Kind: events.KindUpdate})
	_, ok = store.Get(cache.K("series", "list"))
	assert.False(t, ok)
}

func TestTable_SeriesWithoutIDsInvalidatesPrefix(t *testing.T) {
	d, store, _, _ := newTestTable(t)

	d.Dispatch(context.Background(), events.Event{Key: events.KeySeries, Kind: events.KindDelete})

	assert.Equal(t, []string{"series"}, store.invalidated)
}

func TestTable_EpisodeResolvesOwningSeries(t *testing.T) {
	d, store, _, _ := newTestTable(t)
	store.Set(KeyEpisodes, map[int64]model.Episode{
		50: {ID: 50, SeriesID: 7},
	})

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeyEpisode, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[50]`),
	})

	assert.Equal(t, []string{"series/7"}, store.invalidated)
}

func TestTable_EpisodeNotCachedIsSkipped(t *testing.T) {
	d, store, _, _ := newTestTable(t)
	store.Set(KeyEpisodes, map[int64]model.Episode{
		50: {ID: 50, SeriesID: 7},
	})

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeyEpisode, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[999]`),
	})

	assert.Empty(t, store.invalidated)
}

func TestTable_EpisodeWithoutEpisodeCache(t *testing.T) {
	d, store, _, _ := newTestTable(t)

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeyEpisode, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[50]`),
	})

	assert.Empty(t, store.invalidated)
}

func TestTable_ScopeKeys(t *testing.T) {
	tests := []struct {
		key    events.Key
		kind   events.Kind
		prefix string
	}{
		{events.KeySettings, events.KindUpdate, "settings"},
		{events.KeyLanguages, events.KindDelete, "languages"},
		{events.KeyBadges, events.KindUpdate, "badges"},
		{events.KeyTask, events.KindUpdate, "system/tasks"},
		{events.KeyEpisodeWanted, events.KindUpdate, "episodes/wanted"},
		{events.KeyMovieWanted, events.KindDelete, "movies/wanted"},
		{events.KeyEpisodeHistory, events.KindUpdate, "episodes/history"},
		{events.KeyMovieHistory, events.KindUpdate, "movies/history"},
		{events.KeyEpisodeBlacklist, events.KindDelete, "episodes/blacklist"},
		{events.KeyMovieBlacklist, events.KindUpdate, "movies/blacklist"},
		{events.KeyResetEpisodeWanted, events.KindUpdate, "episodes/wanted"},
		{events.KeyResetMovieWanted, events.KindDelete, "movies/wanted"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			d, store, _, _ := newTestTable(t)
			d.Dispatch(context.Background(), events.Event{Key: tt.key, Kind: tt.kind})
			assert.Equal(t, []string{tt.prefix}, store.invalidated)
		})
	}
}

func TestTable_MessageShowsNotifications(t *testing.T) {
	d, store, sink, _ := newTestTable(t)

	d.Dispatch(context.Background(), events.Event{
		Key: events.KeyMessage, Kind: events.KindUpdate,
		Payload: json.RawMessage(`[{"title": "Done", "body": "All subtitles downloaded"}]`),
	})

	require.Len(t, sink.shown, 1)
	assert.Equal(t, "Done", sink.shown[0].Title)
	assert.Equal(t, "All subtitles downloaded", sink.shown[0].Body)
	assert.NotEmpty(t, sink.shown[0].ID)
	// Messages never touch the cache.
	assert.Empty(t, store.invalidated)
}

func TestTable_ConnectivityHandlers(t *testing.T) {
	d, _, sink, status := newTestTable(t)

	assert.False(t, status.Online())

	d.Dispatch(context.Background(), events.Event{Key: events.KeyConnect, Kind: events.KindUpdate})
	assert.True(t, status.Online())

	d.Dispatch(context.Background(), events.Event{Key: events.KeyDisconnect, Kind: events.KindDelete})
	assert.False(t, status.Online())

	d.Dispatch(context.Background(), events.Event{Key: events.KeyConnectError})
	assert.NotEmpty(t, status.CriticalError())
	assert.Equal(t, 1, sink.cleared)

	// Reconnecting clears the critical error.
	d.Dispatch(context.Background(), events.Event{Key: events.KeyConnect})
	assert.True(t, status.Online())
	assert.Empty(t, status.CriticalError())
}
