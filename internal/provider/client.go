// Package provider talks to the weather provider's undocumented web
// endpoints: station geolocation, area search and the six facet pages.
package provider

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidArguments is returned for bad caller input, fatal to the call.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrStationLookup is fatal to client initialization and not retried.
	ErrStationLookup = errors.New("station lookup failed")
	// ErrEmptyBody is a transport-class failure retried on the next tick.
	ErrEmptyBody = errors.New("empty response body")
)

const (
	defaultReferer   = "https://m.weather.com.cn/"
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_1) AppleWebKit/537 (KHTML, like Gecko) Chrome/116.0 Safari/537"
	defaultTimeout   = 20 * time.Second
)

// Options configures the outbound HTTP behaviour.
type Options struct {
	// Domain is the provider's base domain; endpoint families live on node
	// subdomains of it.
	Domain string
	// InsecureTLS relaxes certificate verification. Some of the provider's
	// legacy endpoints still need it.
	InsecureTLS bool
	Timeout     time.Duration
	// RateLimit caps outbound requests per second; RateBurst is the burst
	// size. Zero disables limiting.
	RateLimit float64
	RateBurst int
	// DefaultLat/DefaultLng are the embedding application's configured
	// coordinates, used when station resolution gets neither an area id
	// nor explicit coordinates.
	DefaultLat *float64
	DefaultLng *float64

	Referer   string
	UserAgent string
	Logger    *slog.Logger
}

// Client issues all outbound provider requests. Requests are unauthenticated
// GETs with fixed Referer/User-Agent headers and redirects disabled.
type Client struct {
	domain     string
	http       *http.Client
	limiter    *rate.Limiter
	referer    string
	userAgent  string
	defaultLat *float64
	defaultLng *float64
	log        *slog.Logger

	searchBreaker *gobreaker.CircuitBreaker
}

func New(opts Options) (*Client, error) {
	if opts.Domain == "" {
		return nil, fmt.Errorf("%w: provider domain cannot be empty", ErrInvalidArguments)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	referer := opts.Referer
	if referer == "" {
		referer = defaultReferer
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		domain: strings.TrimSuffix(opts.Domain, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureTLS},
			},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter:    limiter,
		referer:    referer,
		userAgent:  userAgent,
		defaultLat: opts.DefaultLat,
		defaultLng: opts.DefaultLng,
		log:        log,
		searchBreaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "area-search",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}, nil
}

// SetTransport swaps the underlying round tripper. Tests use it to serve
// canned provider pages.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.Transport = rt
}

// APIURL builds an endpoint URL on a node subdomain, appending the
// cache-busting millisecond timestamp the provider's own pages use.
func (c *Client) APIURL(api, node string, withTime bool) string {
	u := fmt.Sprintf("https://%s.%s/%s", node, c.domain, strings.TrimLeft(api, "/"))
	if withTime {
		sep := "?"
		if strings.Contains(api, "?") {
			sep = "&"
		}
		u += sep + "_=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	// the www node still serves plain http only
	return strings.Replace(u, "https://www", "http://www", 1)
}

// WebURL builds a browsable page URL without the cache buster.
func (c *Client) WebURL(path string) string {
	return c.APIURL(path, "m", false)
}

// AlarmPictureURL renders the warning badge image URL for a two-part
// warning code.
func (c *Client) AlarmPictureURL(code string) string {
	return c.APIURL(fmt.Sprintf("m2/i/about/alarmpic/%s.gif", code), "i", false)
}

// get issues one rate-limited GET and returns the status code and body.
func (c *Client) get(ctx context.Context, url string) (int, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, "", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Referer", c.referer)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}
