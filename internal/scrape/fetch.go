package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchError is returned for network failures and non-success responses.
// Callers decide whether to surface or retry; the fetcher itself never
// retries.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserAgentFunc supplies the User-Agent header per request, so the value
// can come from the settings store without the client holding a DB handle.
type UserAgentFunc func(ctx context.Context) string

// Client performs single blocking GETs. It deliberately uses the default
// http.Client, inheriting its (absent) timeout.
type Client struct {
	hc        *http.Client
	userAgent UserAgentFunc
}

func NewClient(userAgent UserAgentFunc) *Client {
	return &Client{hc: http.DefaultClient, userAgent: userAgent}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if c.userAgent != nil {
		if ua := c.userAgent(ctx); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	return string(body), nil
}
