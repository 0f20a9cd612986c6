package vizcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// getJSON fetches url and decodes a 200 response into v.
func (c *HTTPClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %w: %d %s", url, ErrUnexpectedStatus, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// checkServiceHealth verifies the service answers /healthz.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string, stats *Stats) error {
	var health struct {
		Status string `json:"status"`
	}
	stats.Requests++
	if err := client.getJSON(ctx, baseURL+"/healthz", &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("health status %q: %w", health.Status, ErrUnhealthy)
	}
	return nil
}

// fetchSnapshot fetches the payload, hulls and workouts concurrently.
func fetchSnapshot(ctx context.Context, client *HTTPClient, baseURL string, stats *Stats) (*Snapshot, error) {
	snap := &Snapshot{}
	targets := []struct {
		path string
		into any
	}{
		{"/api/data", &snap.Payload},
		{"/api/hulls", &snap.Hulls},
		{"/api/workout_descriptions", &snap.Workouts},
	}

	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = client.getJSON(ctx, baseURL+t.path, t.into)
		}()
	}
	wg.Wait()

	stats.Requests += len(targets)
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}
