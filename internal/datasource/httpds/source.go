package httpds

import (
	"context"
	"fmt"
	"io"
	"strings"

	"itemimport/internal/datasource"
)

// Source reads an item file from an http(s) URL.
type Source struct {
	client *Client
	url    string
}

// NewSource returns a Source fetching url through c.
func NewSource(c *Client, url string) *Source {
	return &Source{client: c, url: url}
}

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Open issues the GET and returns the response body. Non-2xx responses are
// errors.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", s.url, resp.Status)
	}
	return resp.Body, nil
}

var _ datasource.Source = (*Source)(nil)
