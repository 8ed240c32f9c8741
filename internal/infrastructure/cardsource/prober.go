package cardsource

import (
	"context"
	"net/http"
	"time"
)

// HTTPProber checks link liveness with a HEAD request. Any transport error
// or non-success status counts as dead.
type HTTPProber struct {
	httpClient *http.Client
}

// NewHTTPProber creates a prober with a short timeout so a slow host does
// not stall link verification.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{httpClient: &http.Client{Timeout: 5 * time.Second}}
}

// Reachable reports whether the URL answers a HEAD request with a success
// status.
func (p *HTTPProber) Reachable(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}
