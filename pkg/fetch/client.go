// Package fetch downloads small remote files, such as the PDM bootstrap
// installer, into memory.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/setup-pdm/pkg/buildinfo"
	"github.com/matzehuels/setup-pdm/pkg/errors"
	"github.com/matzehuels/setup-pdm/pkg/observability"
)

// maxBodySize bounds a download. The installer script is ~30KB.
const maxBodySize = 16 << 20

// Client fetches URLs as raw bytes.
//
// Failures are not retried and no timeout is applied: a stalled download
// blocks until ctx is cancelled, leaving step timeouts to the runner.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers.
// Pass nil for headers if no extra headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{},
		headers: headers,
	}
}

// Fetch performs an HTTP GET and returns the response body.
//
// Returns:
//   - [errors.ErrCodeNotFound] for a 404
//   - [errors.ErrCodeNetwork] for transport failures and other non-200 statuses
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read body of %s", rawURL)
	}
	if len(data) > maxBodySize {
		return nil, errors.New(errors.ErrCodeNetwork, "response from %s exceeds %d bytes", rawURL, maxBodySize)
	}
	return data, nil
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "GET %s: status %d", rawURL, code)
	default:
		return errors.New(errors.ErrCodeNetwork, "GET %s: status %d", rawURL, code)
	}
}

