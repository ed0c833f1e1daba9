package dispatch

import (
	"context"
	"log/slog"

	"arrsync/internal/cache"
	"arrsync/internal/events"
	"arrsync/internal/notify"
	"arrsync/pkg/model"
)

// Deps carries the collaborators the handler table closes over. Ownership
// of each stays with the caller; the registry only holds closures.
type Deps struct {
	Cache    cache.Store
	Jobs     *JobReconciler
	Notifier notify.Sink
	Status   *notify.Status
	Logger   *slog.Logger
}

// Table builds the production handler registry. Registration errors are
// configuration errors and abort startup.
func Table(deps Deps) (*Registry, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := NewRegistry()

	regs := []struct {
		key events.Key
		h   Handlers
	}{
		{events.KeyConnect, Handlers{Any: connected(deps)}},
		{events.KeyConnectError, Handlers{Any: connectFailed(deps)}},
		{events.KeyDisconnect, Handlers{Any: disconnected(deps)}},
		{events.KeyMessage, Handlers{Update: showMessages(deps)}},

		{events.KeySeries, Handlers{
			Update: invalidatePerID(deps, KeySeries),
			Delete: invalidatePerID(deps, KeySeries),
		}},
		{events.KeyMovie, Handlers{
			Update: invalidatePerID(deps, KeyMovies),
			Delete: invalidatePerID(deps, KeyMovies),
		}},
		{events.KeyEpisode, Handlers{
			Update: invalidateOwningSeries(deps),
			Delete: invalidateOwningSeries(deps),
		}},

		{events.KeyEpisodeWanted, Handlers{
			Update: invalidatePrefix(deps, KeyEpisodeWanted),
			Delete: invalidatePrefix(deps, KeyEpisodeWanted),
		}},
		{events.KeyMovieWanted, Handlers{
			Update: invalidatePrefix(deps, KeyMovieWanted),
			Delete: invalidatePrefix(deps, KeyMovieWanted),
		}},
		{events.KeyResetEpisodeWanted, Handlers{Any: invalidatePrefix(deps, KeyEpisodeWanted)}},
		{events.KeyResetMovieWanted, Handlers{Any: invalidatePrefix(deps, KeyMovieWanted)}},

		{events.KeyEpisodeHistory, Handlers{Any: invalidatePrefix(deps, KeyEpisodeHistory)}},
		{events.KeyEpisodeBlacklist, Handlers{Any: invalidatePrefix(deps, KeyEpisodeBlacklist)}},
		{events.KeyMovieHistory, Handlers{Any: invalidatePrefix(deps, KeyMovieHistory)}},
		{events.KeyMovieBlacklist, Handlers{Any: invalidatePrefix(deps, KeyMovieBlacklist)}},

		{events.KeySettings, Handlers{Any: invalidatePrefix(deps, KeySettings)}},
		{events.KeyLanguages, Handlers{Any: invalidatePrefix(deps, KeyLanguages)}},
		{events.KeyBadges, Handlers{Any: invalidatePrefix(deps, KeyBadges)}},
		{events.KeyTask, Handlers{Any: invalidatePrefix(deps, KeyTasks)}},

		{events.KeyJob, Handlers{Update: deps.Jobs.Apply}},
	}

	for _, reg := range regs {
		if err := r.Register(reg.key, reg.h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// invalidatePrefix marks everything under prefix stale, ignoring the
// payload. Used for scope-level resources.
func invalidatePrefix(deps Deps, prefix cache.Key) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		deps.Cache.Invalidate(prefix)
	}
}

// invalidatePerID invalidates one entity key per payload id, or the whole
// prefix when the payload carries no ids. The per-id path leaves every
// other entry under the prefix warm, collection views included; those are
// refreshed only by an id-less event.
func invalidatePerID(deps Deps, prefix cache.Key) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		ids := e.IDs()
		if len(ids) == 0 {
			deps.Cache.Invalidate(prefix)
			return
		}
		for _, id := range ids {
			key := append(cache.Key{}, prefix...)
			deps.Cache.Invalidate(append(key, cache.ID(id)))
		}
	}
}

// invalidateOwningSeries handles episode events. Episodes are not cached
// on their own, so each episode id is resolved to its owning series via
// the cached episode data and the series prefix is invalidated instead.
// Episodes missing from the cache are skipped; there is no way to resolve
// their series.
func invalidateOwningSeries(deps Deps) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		byID, ok := cachedEpisodes(deps.Cache)
		if !ok {
			return
		}
		for _, id := range e.IDs() {
			ep, found := byID[id]
			if !found {
				deps.Logger.Debug("episode not cached, skipping", "id", id)
				continue
			}
			deps.Cache.Invalidate(cache.K("series", cache.ID(ep.SeriesID)))
		}
	}
}

func cachedEpisodes(store cache.Store) (map[int64]model.Episode, bool) {
	v, ok := store.Get(KeyEpisodes)
	if !ok {
		return nil, false
	}
	byID, ok := v.(map[int64]model.Episode)
	return byID, ok
}

// showMessages turns each payload entry into a toast notification.
func showMessages(deps Deps) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		msgs, err := e.Messages()
		if err != nil {
			deps.Logger.Warn("dropping malformed message payload", "error", err)
			return
		}
		for _, msg := range msgs {
			deps.Notifier.Show(notify.New(msg.Title, msg.Body))
		}
	}
}

func connected(deps Deps) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		deps.Status.SetOnline(true)
		deps.Logger.Info("connected to event feed")
	}
}

func connectFailed(deps Deps) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		deps.Status.SetCriticalError("connection to the server failed")
		deps.Notifier.ClearAll()
		deps.Logger.Warn("connection to event feed failed")
	}
}

func disconnected(deps Deps) HandlerFunc {
	return func(ctx context.Context, e events.Event) {
		deps.Status.SetOnline(false)
		deps.Logger.Info("disconnected from event feed")
	}
}
