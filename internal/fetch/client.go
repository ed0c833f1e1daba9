// Package fetch implements the read side of the server API. The jobs
// reconciler uses it to re-fetch single records after a push event.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"arrsync/pkg/model"
)

// Config configures the API client.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:6767.
	BaseURL string
	// APIKey is sent on every request via the X-API-KEY header.
	APIKey string
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
}

// Client is the HTTP client for the server's read API.
type Client struct {
	base    *url.URL
	apiKey  string
	client  *http.Client
	encoder *schema.Encoder
}

// NewClient creates a Client from config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   base,
		apiKey: cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		encoder: schema.NewEncoder(),
	}, nil
}

type jobsQuery struct {
	ID int64 `schema:"id"`
}

// JobsByID fetches the job record with the given id. The server returns
// zero or one matching record; transport and server errors are returned to
// the caller, an empty result is not an error.
func (c *Client) JobsByID(ctx context.Context, id int64) ([]model.JobRecord, error) {
	params := url.Values{}
	if err := c.encoder.Encode(jobsQuery{ID: id}, params); err != nil {
		return nil, fmt.Errorf("encoding jobs query: %w", err)
	}

	endpoint := *c.base
	endpoint.Path += "/api/system/jobs"
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating jobs request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("jobs request failed with status: %d", resp.StatusCode)
	}

	var records []model.JobRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding jobs response: %w", err)
	}
	return records, nil
}
