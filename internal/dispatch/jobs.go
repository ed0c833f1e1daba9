package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"arrsync/internal/cache"
	"arrsync/internal/events"
	"arrsync/pkg/model"
)

// Fetcher is the read side of the server API the reconciler needs: a
// single-record lookup returning zero or one job.
type Fetcher interface {
	JobsByID(ctx context.Context, id int64) ([]model.JobRecord, error)
}

// JobReconciler applies job events by partial merge instead of the generic
// invalidate-and-refetch strategy. Jobs update at a high rate (progress
// counters), so invalidating the whole list per event would refetch it
// constantly; trading a per-id read for an in-place merge keeps the cached
// list warm.
type JobReconciler struct {
	cache   cache.Store
	fetcher Fetcher
	logger  *slog.Logger

	// mu serializes the read-modify-write of the cached list. Fetches for
	// different ids run concurrently and their completions may race; the
	// merge step is the critical section that prevents lost updates.
	mu sync.Mutex
	wg sync.WaitGroup
}

// NewJobReconciler creates a reconciler over the given cache and fetcher.
func NewJobReconciler(store cache.Store, fetcher Fetcher, logger *slog.Logger) *JobReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobReconciler{
		cache:   store,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Apply handles one job event. Each payload id is processed independently:
// malformed ids, failed fetches and fetcher panics are logged and skipped
// without touching the rest of the batch. Fetches are submitted and not awaited, so a slow
// server never blocks the dispatcher; use Wait to drain in-flight work.
func (r *JobReconciler) Apply(ctx context.Context, e events.Event) {
	entries, err := e.Entries()
	if err != nil {
		r.logger.Warn("dropping malformed job payload", "error", err)
		return
	}

	for _, entry := range entries {
		id, ok := model.AsID(entry)
		if !ok {
			r.logger.Warn("skipping malformed job id", "id", fmt.Sprintf("%v", entry))
			continue
		}
		r.wg.Add(1)
		go func(id int64) {
			defer r.wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("job reconcile panicked", "id", id, "panic", rec)
				}
			}()
			r.reconcile(ctx, id)
		}(id)
	}
}

// Wait blocks until all submitted reconciliations have finished. Intended
// for shutdown and tests.
func (r *JobReconciler) Wait() {
	r.wg.Wait()
}

func (r *JobReconciler) reconcile(ctx context.Context, id int64) {
	records, err := r.fetcher.JobsByID(ctx, id)
	if err != nil {
		r.logger.Warn("job fetch failed", "id", id, "error", err)
		return
	}
	if len(records) == 0 {
		// Nothing to merge.
		return
	}
	r.merge(records[0])
}

// merge layers incoming over the cached entry with the same jobId,
// preserving its position, or appends when the job is new. The cached list
// is replaced wholesale under the lock so concurrent completions cannot
// lose each other's updates.
func (r *JobReconciler) merge(incoming model.JobRecord) {
	id, ok := incoming.JobID()
	if !ok {
		r.logger.Warn("fetched job record has no usable jobId")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var list []model.JobRecord
	if v, found := r.cache.Get(KeyJobs); found {
		if cached, isList := v.([]model.JobRecord); isList {
			list = cached
		}
	}

	out := make([]model.JobRecord, len(list))
	merged := false
	for i, current := range list {
		if cid, hasID := current.JobID(); hasID && cid == id {
			out[i] = current.Merge(incoming)
			merged = true
			continue
		}
		out[i] = current
	}
	if !merged {
		out = append(out, incoming)
	}

	r.cache.Set(KeyJobs, out)
}
