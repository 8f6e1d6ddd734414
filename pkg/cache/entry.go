package cache

import (
	"net/http"
	"time"
)

// DefaultTTL is used when a response carries no usable Expires header.
const DefaultTTL = time.Hour

// Entry is a cached API response.
type Entry struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status of the cached response.
	StatusCode int `json:"status_code"`

	// Headers are the response headers.
	Headers http.Header `json:"headers"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry builds an entry from a response. The Expires header wins over
// fallbackTTL when it parses and lies in the future.
func NewEntry(statusCode int, headers http.Header, body []byte, fallbackTTL time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:       body,
		StatusCode: statusCode,
		Headers:    headers.Clone(),
		Expires:    parseExpires(headers, now, fallbackTTL),
		CachedAt:   now,
	}
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration, or 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func parseExpires(headers http.Header, now time.Time, fallbackTTL time.Duration) time.Time {
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultTTL
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return now.Add(fallbackTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil || !expires.After(now) {
		// Unparseable or past values count as absent.
		return now.Add(fallbackTTL)
	}

	return expires
}
