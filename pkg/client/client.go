// Package client provides the HTTP client used by all API sources: a single
// GET with User-Agent, optional request pacing, quota tracking, Redis
// response caching and strict status handling. Requests are never retried.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/fuel-data-etl/pkg/cache"
	"github.com/Sternrassler/fuel-data-etl/pkg/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_request_errors_total",
		Help: "Total API request errors by class",
	}, []string{"class"})
)

// Client performs GET requests against JSON APIs.
type Client struct {
	http        *resty.Client
	limiter     *rate.Limiter
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// UserAgent header sent with every request (required).
	UserAgent string

	// Timeout per request. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond paces requests. Zero means unlimited.
	RequestsPerSecond float64

	// Redis enables the response cache when non-nil.
	Redis *redis.Client

	// CacheTTL applies to cached responses without an Expires header.
	CacheTTL time.Duration

	// QuotaWindow is how long a spent API quota blocks requests.
	QuotaWindow time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:   userAgent,
		Timeout:     30 * time.Second,
		CacheTTL:    cache.DefaultTTL,
		QuotaWindow: ratelimit.DefaultWindow,
	}
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Cached is true when the response came from the Redis cache.
	Cached bool
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests_per_second must be >= 0 (got %g)", cfg.RequestsPerSecond)
	}

	logger := log.With().Str("component", "http-client").Logger()

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")
	httpClient.OnAfterResponse(observeResponse)
	httpClient.OnError(observeError)

	c := &Client{
		http:        httpClient,
		limiter:     rate.NewLimiter(limit, 1),
		rateLimiter: ratelimit.NewTracker(cfg.QuotaWindow, logger),
		config:      cfg,
		logger:      logger,
	}
	if cfg.Redis != nil {
		c.cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return c, nil
}

// RequestOption customizes a single Get call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	cacheable func(body []byte) bool
}

// CacheIf stores a 200 response in the cache only when accept returns true
// for its body. Use it for APIs that report failures inside a 200 response.
func CacheIf(accept func(body []byte) bool) RequestOption {
	return func(o *requestOptions) {
		o.cacheable = accept
	}
}

// Get fetches rawURL with query appended. Any status other than 200 is
// returned as *HTTPError; network failures are classified as network errors.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, opts ...RequestOption) (*Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	display := RedactURL(u, query)
	endpoint := u.Path

	cacheKey := cache.Key{
		Host:        u.Host,
		Endpoint:    endpoint,
		QueryParams: CacheQuery(mergeQuery(u.Query(), query)),
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("url", display).Msg("Serving response from cache")
			return &Response{
				StatusCode: entry.StatusCode,
				Header:     entry.Headers,
				Body:       entry.Data,
				Cached:     true,
			}, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", display).Msg("Cache get error")
		}
	}

	if !c.rateLimiter.ShouldAllowRequest() {
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return nil, fmt.Errorf("%w: API quota spent, request to %s refused", ErrRateLimited, display)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for request slot: %w", err)
	}

	c.logger.Debug().Str("url", display).Msg("Executing request")

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(rawURL)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(stripURL(err)).Str("url", display).Msg("HTTP request failed")
		return nil, fmt.Errorf("%s request to %s: %w", ErrorClassNetwork, display, stripURL(err))
	}

	if err := c.rateLimiter.UpdateFromHeaders(resp.Header()); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update quota from headers")
	}

	if resp.StatusCode() != http.StatusOK {
		class := classifyStatus(resp.StatusCode())
		errorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("url", display).
			Int("status_code", resp.StatusCode()).
			Str("error_class", string(class)).
			Msg("API request error")

		return nil, &HTTPError{
			StatusCode: resp.StatusCode(),
			ErrorClass: class,
			Message:    http.StatusText(resp.StatusCode()),
			URL:        display,
			Body:       snippet(resp.Body()),
		}
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}

	switch {
	case c.cache == nil:
	case ro.cacheable != nil && !ro.cacheable(out.Body):
		c.logger.Debug().Str("url", display).Msg("Response not cacheable")
	default:
		entry := cache.NewEntry(out.StatusCode, out.Header, out.Body, c.cache.DefaultTTL())
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Str("url", display).Msg("Failed to cache response")
		}
	}

	return out, nil
}

// QuotaState returns the last API quota seen in response headers.
func (c *Client) QuotaState() ratelimit.State {
	return c.rateLimiter.State()
}

// CacheEnabled reports whether responses are cached in Redis.
func (c *Client) CacheEnabled() bool {
	return c.cache != nil
}

// SetTransport replaces the HTTP transport (for testing).
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.SetTransport(rt)
}

func observeResponse(_ *resty.Client, resp *resty.Response) error {
	endpoint := resp.Request.RawRequest.URL.Path
	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()
	requestDuration.WithLabelValues(endpoint).Observe(resp.Time().Seconds())
	return nil
}

func observeError(req *resty.Request, _ error) {
	endpoint := ""
	if req.RawRequest != nil {
		endpoint = req.RawRequest.URL.Path
	}
	requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
}

// stripURL drops the *url.Error wrapper, whose message carries the full
// request URL including credentials.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func mergeQuery(base, extra url.Values) url.Values {
	out := make(url.Values, len(base)+len(extra))
	for name, values := range base {
		out[name] = append(out[name], values...)
	}
	for name, values := range extra {
		out[name] = append(out[name], values...)
	}
	return out
}
