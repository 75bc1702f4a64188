// Package fetcher retrieves subscription pages over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const fetchTimeout = 15 * time.Second

// userAgents is a small rotating pool; one is picked once per Fetcher at
// construction time and held for the Fetcher's lifetime, so different
// subscriptions (each with their own Fetcher) present different clients.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Fetcher performs a single GET per call, with a fixed total timeout and a
// user-agent that is constant for the Fetcher's lifetime but varies across
// process runs and across Fetcher instances.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New constructs a Fetcher with a freshly picked user-agent. Callers that
// want per-subscription UA diversity should construct one Fetcher per
// subscription, which is the intended usage (see Monitor).
func New() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: fetchTimeout},
		userAgent: userAgents[rand.Intn(len(userAgents))],
	}
}

// Fetch performs an HTTP GET against url and returns the response body on
// any 2xx status. Non-2xx responses and transport errors are both
// returned as errors; there are no retries and no redirect customization
// beyond the client defaults.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}
	return body, nil
}
