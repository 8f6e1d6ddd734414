package ratelimit

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func quotaHeaders(limit, remaining string) http.Header {
	h := http.Header{}
	if limit != "" {
		h.Set(HeaderLimit, limit)
	}
	if remaining != "" {
		h.Set(HeaderRemaining, remaining)
	}
	return h
}

func TestUpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       http.Header
		wantErr       bool
		wantKnown     bool
		wantRemaining int
	}{
		{"valid headers", quotaHeaders("1000", "998"), false, true, 998},
		{"no headers", http.Header{}, false, false, 0},
		{"invalid remaining", quotaHeaders("1000", "abc"), true, false, 0},
		{"missing limit", quotaHeaders("", "10"), true, false, 0},
		{"invalid limit", quotaHeaders("x", "10"), true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(0, zerolog.Nop())

			err := tracker.UpdateFromHeaders(tt.headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpdateFromHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}

			state := tracker.State()
			if state.Known != tt.wantKnown {
				t.Errorf("Known = %v, want %v", state.Known, tt.wantKnown)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestUpdateFromHeaders_MissingLimitError(t *testing.T) {
	tracker := NewTracker(0, zerolog.Nop())
	err := tracker.UpdateFromHeaders(quotaHeaders("", "10"))
	if !errors.Is(err, ErrMissingLimit) {
		t.Errorf("error = %v, want ErrMissingLimit", err)
	}
}

func TestShouldAllowRequest(t *testing.T) {
	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		headers http.Header
		elapsed time.Duration
		want    bool
	}{
		{"no state", nil, 0, true},
		{"quota left", quotaHeaders("1000", "5"), 0, true},
		{"quota spent", quotaHeaders("1000", "0"), time.Minute, false},
		{"quota spent window elapsed", quotaHeaders("1000", "0"), 61 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := base
			tracker := NewTracker(time.Hour, zerolog.Nop())
			tracker.now = func() time.Time { return now }

			if tt.headers != nil {
				if err := tracker.UpdateFromHeaders(tt.headers); err != nil {
					t.Fatalf("UpdateFromHeaders() error = %v", err)
				}
			}

			now = base.Add(tt.elapsed)
			if got := tracker.ShouldAllowRequest(); got != tt.want {
				t.Errorf("ShouldAllowRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTracker_DefaultWindow(t *testing.T) {
	tracker := NewTracker(0, zerolog.Nop())
	if tracker.window != DefaultWindow {
		t.Errorf("window = %v, want %v", tracker.window, DefaultWindow)
	}
}
