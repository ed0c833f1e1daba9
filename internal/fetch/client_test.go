package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrsync/pkg/model"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://localhost:6767/"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestClient_JobsByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/system/jobs", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		json.NewEncoder(w).Encode([]model.JobRecord{
			{"jobId": float64(42), "status": "running", "progress": float64(40)},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	records, err := c.JobsByID(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, records, 1)

	id, ok := records[0].JobID()
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "running", records[0]["status"])
}

func TestClient_JobsByID_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.JobRecord{})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	records, err := c.JobsByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_JobsByID_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.JobsByID(context.Background(), 1)
	assert.ErrorContains(t, err, "status: 500")
}

func TestClient_JobsByID_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = c.JobsByID(ctx, 1)
	assert.Error(t, err)
}

func TestClient_JobsByID_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.JobsByID(context.Background(), 1)
	assert.ErrorContains(t, err, "decoding jobs response")
}
