package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"autorisk/domain/core"
)

// HTTPSource fetches http(s) locators with GET
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource creates an HTTP source; nil uses http.DefaultClient
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client}
}

// Open issues a GET and fails on any non-2xx status
func (s *HTTPSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", core.RedactLocator(locator), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", core.RedactLocator(locator), resp.Status)
	}
	return resp.Body, nil
}
