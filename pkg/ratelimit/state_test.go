package ratelimit

import (
	"testing"
	"time"
)

func TestState_Exhausted(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"unknown", State{}, false},
		{"remaining", State{Known: true, Limit: 1000, Remaining: 1}, false},
		{"zero", State{Known: true, Limit: 1000, Remaining: 0}, true},
		{"negative", State{Known: true, Limit: 1000, Remaining: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_NeedsWarning(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"unknown", State{}, false},
		{"healthy", State{Known: true, Limit: 1000, Remaining: 500}, false},
		{"at threshold", State{Known: true, Limit: 1000, Remaining: 100}, false},
		{"below threshold", State{Known: true, Limit: 1000, Remaining: 99}, true},
		{"exhausted", State{Known: true, Limit: 1000, Remaining: 0}, false},
		{"no limit", State{Known: true, Limit: 0, Remaining: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.NeedsWarning(); got != tt.want {
				t.Errorf("NeedsWarning() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_IsStale(t *testing.T) {
	now := time.Now()
	s := State{LastUpdate: now.Add(-2 * time.Hour)}

	if !s.IsStale(now, time.Hour) {
		t.Error("Expected state older than window to be stale")
	}
	if s.IsStale(now, 3*time.Hour) {
		t.Error("Expected state within window to be fresh")
	}
}
