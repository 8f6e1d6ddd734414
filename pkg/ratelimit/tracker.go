package ratelimit

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etl_api_quota_remaining",
		Help: "Requests remaining in the current API quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "etl_api_quota_blocks_total",
		Help: "Total number of requests refused locally because the API quota was spent",
	})
)

// ErrMissingLimit is returned when only one of the quota headers is present.
var ErrMissingLimit = errors.New("rate limit headers incomplete")

// Tracker keeps the quota state of one API host.
type Tracker struct {
	mu     sync.Mutex
	state  State
	window time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewTracker creates a tracker. A zero window uses DefaultWindow.
func NewTracker(window time.Duration, logger zerolog.Logger) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// UpdateFromHeaders records the quota reported by a response. Responses
// without quota headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	limitStr := headers.Get(HeaderLimit)
	if limitStr == "" {
		return fmt.Errorf("%w: %s missing", ErrMissingLimit, HeaderLimit)
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderLimit, err)
	}

	state := State{
		Limit:      limit,
		Remaining:  remain,
		LastUpdate: t.now(),
		Known:      true,
	}

	t.mu.Lock()
	t.state = state
	t.mu.Unlock()

	quotaRemaining.Set(float64(remain))

	switch {
	case state.Exhausted():
		t.logger.Error().
			Int("limit", limit).
			Int("remaining", remain).
			Msg("API quota spent - further requests will be refused")
	case state.NeedsWarning():
		t.logger.Warn().
			Int("limit", limit).
			Int("remaining", remain).
			Msg("API quota low")
	default:
		t.logger.Debug().
			Int("limit", limit).
			Int("remaining", remain).
			Msg("API quota updated")
	}

	return nil
}

// ShouldAllowRequest returns false while the quota is spent and the window
// since the last update has not elapsed.
func (t *Tracker) ShouldAllowRequest() bool {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if !state.Exhausted() || state.IsStale(t.now(), t.window) {
		return true
	}

	t.logger.Error().
		Int("limit", state.Limit).
		Time("last_update", state.LastUpdate).
		Msg("API quota spent - refusing request")
	quotaBlocksTotal.Inc()

	return false
}
