// Package model holds the data types shared between the event pipeline,
// the cache, and the server API client.
package model

import (
	"encoding/json"
	"strconv"
)

// JobRecord is one entry of the cached jobs list. It is map-backed so that
// a partial update only overwrites the fields the server actually returned.
type JobRecord map[string]any

// JobID returns the record's identity, if present and numeric.
func (r JobRecord) JobID() (int64, bool) {
	return AsID(r["jobId"])
}

// Merge returns a copy of r with incoming's fields layered on top. Fields
// absent from incoming keep their current value.
func (r JobRecord) Merge(incoming JobRecord) JobRecord {
	out := make(JobRecord, len(r)+len(incoming))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// Episode is the slice of episode data the event pipeline needs: enough to
// resolve an episode id to its owning series.
type Episode struct {
	ID       int64 `json:"id"`
	SeriesID int64 `json:"sonarrSeriesId"`
}

// AsID coerces a decoded JSON value into a numeric identifier. The server
// emits ids as numbers but some feeds stringify them, so both are accepted.
// Fractional numbers are rejected.
func AsID(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		if val != float64(int64(val)) {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
