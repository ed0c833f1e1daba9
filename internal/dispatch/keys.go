package dispatch

import "arrsync/internal/cache"

// Cache key prefixes for server resources. Per-entity keys extend the
// prefix with the entity id. An id-less event invalidates the whole
// prefix; per-id events touch only the id-extended keys, so collection
// views cached under a prefix (at the bare key or any other child
// segment) are refreshed by id-less events alone.
var (
	KeySeries           = cache.K("series")
	KeyMovies           = cache.K("movies")
	KeyEpisodes         = cache.K("episodes")
	KeyEpisodeWanted    = cache.K("episodes", "wanted")
	KeyEpisodeHistory   = cache.K("episodes", "history")
	KeyEpisodeBlacklist = cache.K("episodes", "blacklist")
	KeyMovieWanted      = cache.K("movies", "wanted")
	KeyMovieHistory     = cache.K("movies", "history")
	KeyMovieBlacklist   = cache.K("movies", "blacklist")
	KeySettings         = cache.K("settings")
	KeyLanguages        = cache.K("languages")
	KeyBadges           = cache.K("badges")
	KeyTasks            = cache.K("system", "tasks")

	// KeyJobs addresses the cached jobs list, the one key that is merged
	// in place instead of invalidated.
	KeyJobs = cache.K("system", "jobs")
)
