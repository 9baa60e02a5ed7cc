package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// searchBackoff is the retry policy for the area-search endpoint. Scheduled
// facet jobs never use it; their retry is the next tick.
var searchBackoff = struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}{
	maxRetries:      3,
	initialInterval: 500 * time.Millisecond,
	maxInterval:     5 * time.Second,
}

var (
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// getWithResilience executes a GET with exponential backoff and the search
// circuit breaker, returning the response body.
func (c *Client) getWithResilience(ctx context.Context, url string) (string, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err := c.searchBreaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Referer", c.referer)
			req.Header.Set("User-Agent", c.userAgent)

			resp, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, err
			}
			return string(body), nil
		})

		if err == nil {
			return result.(string), nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= searchBackoff.maxRetries {
			return "", lastErr
		}

		delay := searchBackoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > searchBackoff.maxInterval {
			delay = searchBackoff.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
