package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")

	transient := NewTransientError(base)
	if !IsTransient(transient) {
		t.Error("IsTransient() = false for transient error")
	}
	if IsFatal(transient) {
		t.Error("IsFatal() = true for transient error")
	}

	fatal := NewFatalError(base)
	if !IsFatal(fatal) {
		t.Error("IsFatal() = false for fatal error")
	}
	if IsTransient(fatal) {
		t.Error("IsTransient() = true for fatal error")
	}

	// Wrapping preserves classification.
	wrapped := fmt.Errorf("context: %w", transient)
	if !IsTransient(wrapped) {
		t.Error("IsTransient() lost through wrapping")
	}
}

func TestAsCallError(t *testing.T) {
	inner := NewCallError(KindSafetyBlocked, errors.New("blocked"))
	err := NewFatalError(fmt.Errorf("call failed: %w", inner))

	ce, ok := AsCallError(err)
	if !ok {
		t.Fatal("AsCallError() failed on wrapped chain")
	}
	if ce.Kind != KindSafetyBlocked {
		t.Errorf("Kind = %v, want KindSafetyBlocked", ce.Kind)
	}

	if _, ok := AsCallError(errors.New("plain")); ok {
		t.Error("AsCallError() matched a plain error")
	}
}

func TestCallErrorKindString(t *testing.T) {
	tests := []struct {
		kind CallErrorKind
		want string
	}{
		{KindTransport, "transport"},
		{KindEmptyResponse, "empty_response"},
		{KindSafetyBlocked, "safety_blocked"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantTransient bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, wantTransient: true},
		{name: "server error", status: http.StatusInternalServerError, wantTransient: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantTransient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, wantTransient: false},
		{name: "forbidden", status: http.StatusForbidden, wantTransient: false},
		{name: "bad request", status: http.StatusBadRequest, wantTransient: false},
		{name: "not found", status: http.StatusNotFound, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyHTTPError(tt.status, []byte("details"))
			if IsTransient(err) != tt.wantTransient {
				t.Errorf("IsTransient() = %v, want %v", IsTransient(err), tt.wantTransient)
			}
			if IsFatal(err) == tt.wantTransient {
				t.Errorf("IsFatal() = %v, inconsistent with transient", IsFatal(err))
			}

			// Every HTTP failure carries the transport kind.
			ce, ok := AsCallError(err)
			if !ok {
				t.Fatal("HTTP error missing CallError classification")
			}
			if ce.Kind != KindTransport {
				t.Errorf("Kind = %v, want KindTransport", ce.Kind)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxAttempts < 2 {
		t.Errorf("MaxAttempts = %d, want at least one retry", cfg.MaxAttempts)
	}

	// The worst-case total wait across retries, jitter included, must stay
	// within an interactive conversation turn.
	var total time.Duration
	backoff := cfg.BackoffBase
	for i := 1; i < cfg.MaxAttempts; i++ {
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
		total += backoff + time.Duration(float64(backoff)*0.25)
		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
	}
	if total > 5*time.Second {
		t.Errorf("worst-case retry wait = %v, want under 5s", total)
	}
}

func TestCalculateBackoff(t *testing.T) {
	c := NewClient(nil, WithRetryConfig(RetryConfig{
		MaxAttempts:       5,
		BackoffBase:       100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        400 * time.Millisecond,
	}))

	// With ±25% jitter each attempt stays within a known band and the cap
	// holds for later attempts.
	bands := []struct {
		attempt  int
		min, max time.Duration
	}{
		{1, 75 * time.Millisecond, 125 * time.Millisecond},
		{2, 150 * time.Millisecond, 250 * time.Millisecond},
		{3, 300 * time.Millisecond, 500 * time.Millisecond},
		{4, 300 * time.Millisecond, 500 * time.Millisecond}, // capped at 400ms
	}

	for _, band := range bands {
		for i := 0; i < 20; i++ {
			got := c.calculateBackoff(band.attempt)
			if got < band.min || got > band.max {
				t.Fatalf("calculateBackoff(%d) = %v, want within [%v, %v]",
					band.attempt, got, band.min, band.max)
			}
		}
	}
}
