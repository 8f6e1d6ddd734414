// Package ratelimit tracks the hourly request quota that api.data.gov
// reports on every response (X-RateLimit-Limit, X-RateLimit-Remaining)
// and refuses requests locally once the quota is spent.
package ratelimit

import (
	"time"
)

// Response headers carrying the quota.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
)

const (
	// DefaultWindow is the api.data.gov quota window. A spent quota is
	// assumed to be restored once this much time passed since the last update.
	DefaultWindow = time.Hour

	// WarningPercent logs a warning when less than this share of the quota remains.
	WarningPercent = 10
)

// State is the last quota reported by the API.
type State struct {
	// Limit is the number of requests allowed per window.
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// LastUpdate is when the headers were last seen.
	LastUpdate time.Time `json:"last_update"`

	// Known is false until a response carried the quota headers.
	Known bool `json:"known"`
}

// IsStale returns true if the state is older than maxAge.
func (s State) IsStale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.LastUpdate) > maxAge
}

// Exhausted returns true if the API reported no remaining requests.
func (s State) Exhausted() bool {
	return s.Known && s.Remaining <= 0
}

// NeedsWarning returns true when the remaining quota dropped below WarningPercent.
func (s State) NeedsWarning() bool {
	if !s.Known || s.Limit <= 0 || s.Exhausted() {
		return false
	}
	return s.Remaining*100 < s.Limit*WarningPercent
}
