package source

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"
)

// HTTPLoader fetches frames from a static asset server.
type HTTPLoader struct {
	base   string
	client *http.Client
}

// NewHTTPLoader creates a loader for assets under baseURL. A nil client
// gets a default one with a 30s timeout.
func NewHTTPLoader(baseURL string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{base: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (l *HTTPLoader) Load(ctx context.Context, key string) (image.Image, error) {
	resp, err := l.get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decode(resp.Body, key)
}

func (l *HTTPLoader) Probe(ctx context.Context, key string) (image.Config, error) {
	resp, err := l.get(ctx, key)
	if err != nil {
		return image.Config{}, err
	}
	defer resp.Body.Close()

	return decodeConfig(resp.Body, key)
}

// URL returns the absolute address of key.
func (l *HTTPLoader) URL(key string) string {
	return l.base + "/" + strings.TrimPrefix(key, "/")
}

func (l *HTTPLoader) get(ctx context.Context, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL(key), nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", key, resp.Status)
	}
	return resp, nil
}
