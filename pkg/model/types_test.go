package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsID(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int", 7, 7, true},
		{"int64", int64(42), 42, true},
		{"float64 integral", float64(12), 12, true},
		{"float64 fractional", 12.5, 0, false},
		{"numeric string", "123", 123, true},
		{"non-numeric string", "abc", 0, false},
		{"json number", json.Number("99"), 99, true},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsID(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJobRecord_JobID(t *testing.T) {
	r := JobRecord{"jobId": float64(3), "status": "queued"}
	id, ok := r.JobID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = JobRecord{"status": "queued"}.JobID()
	assert.False(t, ok)
}

func TestJobRecord_Merge(t *testing.T) {
	current := JobRecord{"jobId": float64(1), "status": "queued", "name": "scan"}
	incoming := JobRecord{"jobId": float64(1), "status": "done", "progress": float64(100)}

	merged := current.Merge(incoming)

	assert.Equal(t, "done", merged["status"])
	assert.Equal(t, float64(100), merged["progress"])
	// Fields absent from incoming survive the merge.
	assert.Equal(t, "scan", merged["name"])
	// The receiver is not mutated.
	assert.Equal(t, "queued", current["status"])
}
