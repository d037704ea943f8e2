// Package remote implements a widget data source over the account weather HTTP API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/i474232898/account-weather/internal/widget"
)

// Error is a failed call to the weather procedure. Message is taken from the
// response's body.message when present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client calls GET /api/v1/accounts/:id/weather.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a traced transport.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch implements widget.DataSource.
func (c *Client) Fetch(ctx context.Context, recordID string, bypassCache bool) (widget.Snapshot, error) {
	u := fmt.Sprintf("%s/api/v1/accounts/%s/weather", c.baseURL, url.PathEscape(recordID))
	if bypassCache {
		u += "?refresh=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return widget.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return widget.Snapshot{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return widget.Snapshot{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return widget.Snapshot{}, &Error{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	var snap widget.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return widget.Snapshot{}, fmt.Errorf("decode weather response: %w", err)
	}
	return snap, nil
}

// errorMessage reads the procedure's {"body":{"message"}} envelope, then the
// API's generic {"message"} error, then falls back to the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Body struct {
			Message string `json:"message"`
		} `json:"body"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Body.Message != "" {
			return payload.Body.Message
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(status)
}

var _ widget.DataSource = (*Client)(nil)
