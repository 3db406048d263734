package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/activity-ranking/internal/weather"
)

var (
	errRateLimited    = errors.New("rate limited")
	errServerError    = errors.New("server error")
	errUnexpected     = errors.New("unexpected status code")
	errCircuitOpen    = errors.New("circuit breaker open")
	errNoHTTPClient   = errors.New("http client not configured")
	errInvalidRequest = errors.New("invalid request")
)

// maxErrorBody bounds how much of a failed response is read for its reason.
const maxErrorBody = 4 << 10

// retryPolicy is an exponential backoff schedule. maxRetries of 0 means a
// single attempt.
type retryPolicy struct {
	maxRetries int
	base       time.Duration
	max        time.Duration
}

func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.base << attempt
	if p.max > 0 && (d > p.max || d <= 0) {
		d = p.max
	}
	return d
}

// upstreamClient issues GET requests to one upstream endpoint behind its own
// circuit breaker.
type upstreamClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	retry   retryPolicy
}

func newUpstreamClient(name string, client *http.Client, retry retryPolicy) *upstreamClient {
	return &upstreamClient{
		http: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		retry: retry,
	}
}

// get returns a 2xx response for rawURL. Rate limits, server errors and
// transport failures are retried per the retry policy; client errors and an
// open circuit are returned at once. Every error wraps weather.ErrUpstream.
func (c *upstreamClient) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if c.http == nil {
		return nil, fmt.Errorf("%w: %w", weather.ErrUpstream, errNoHTTPClient)
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		if !retryable(err) || ctx.Err() != nil || attempt >= c.retry.maxRetries {
			return nil, fmt.Errorf("%w: %w", weather.ErrUpstream, err)
		}

		timer := time.NewTimer(c.retry.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", weather.ErrUpstream, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *upstreamClient) attempt(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: %d %s", errServerError, resp.StatusCode, readReason(resp))
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}

	// 4xx is the caller's fault: not retried and not a breaker failure.
	resp := result.(*http.Response)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d %s", errUnexpected, resp.StatusCode, readReason(resp))
	}
	return resp, nil
}

func retryable(err error) bool {
	return !errors.Is(err, errCircuitOpen) &&
		!errors.Is(err, errUnexpected) &&
		!errors.Is(err, errInvalidRequest)
}

// readReason drains and closes a failed response, returning the provider's
// "reason" field when the body is an Open-Meteo style error document.
func readReason(resp *http.Response) string {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Reason != "" {
		return payload.Reason
	}
	return string(body)
}
