// Package httpx provides the HTTP transport used by feed collectors.
//
// Requests carry browser-like headers, a hard timeout, and bounded retry
// with backoff. Retries are invisible to callers: a fetch either returns
// the body or one aggregate error after all attempts are exhausted.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marathonkr/marathon-pipeline/internal/logger"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxAttempts is the total number of tries per fetch.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the initial backoff interval between attempts.
	DefaultRetryDelay = 1 * time.Second

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Options configures a Client. Zero values use the defaults above.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// Client fetches URLs with timeout and retry.
type Client struct {
	hc          *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

// New creates a Client with default options.
func New() *Client {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Client with the given options.
func NewWithOptions(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Client{
		hc:          &http.Client{Timeout: opts.Timeout},
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
	}
}

// FetchText downloads url and returns the response body as a string.
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	data, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		logger.Debug("fetching", logger.Fields{"url": url, "attempt": attempt})

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/calendar;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
			// Client errors will not improve on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		return body, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxAttempts-1)),
		ctx,
	)

	data, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, fmt.Errorf("fetching %s after %d attempt(s): %w", url, attempt, err)
	}
	return data, nil
}
