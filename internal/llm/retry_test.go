package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fakeSleep(recorded *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected 'ok', got '%s'", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDoTerminalErrorNoRetry(t *testing.T) {
	var waits []time.Duration
	orig := sleep
	sleep = fakeSleep(&waits)
	defer func() { sleep = orig }()

	terminal := errors.New("invalid request: bad schema")
	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, terminal
	})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error back, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call for terminal error, got %d", calls)
	}
	if len(waits) != 0 {
		t.Errorf("expected no sleeps, got %d", len(waits))
	}
}

func TestDoRetriesExactlyFiveAttempts(t *testing.T) {
	var waits []time.Duration
	orig := sleep
	sleep = fakeSleep(&waits)
	defer func() { sleep = orig }()

	transient := errors.New("error 529: overloaded")
	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, transient
	})
	if !errors.Is(err, transient) {
		t.Fatalf("expected last error back, got %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 attempts, got %d", calls)
	}
	if len(waits) != 4 {
		t.Fatalf("expected 4 sleeps, got %d", len(waits))
	}
	// base doubles each attempt; jitter adds less than one second
	for i, w := range waits {
		base := initialBackoff * time.Duration(1<<i)
		if w < base || w >= base+time.Second {
			t.Errorf("sleep %d = %v, want [%v, %v)", i, w, base, base+time.Second)
		}
	}
}

func TestDoRecoversMidway(t *testing.T) {
	var waits []time.Duration
	orig := sleep
	sleep = fakeSleep(&waits)
	defer func() { sleep = orig }()

	calls := 0
	result, err := Do(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("rate limit exceeded")
		}
		return "done", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "done" {
		t.Errorf("expected 'done', got '%s'", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}
	defer func() { sleep = orig }()

	calls := 0
	_, err := Do(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("too many requests")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancellation, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Overloaded"), true},
		{errors.New("api error (status 503): upstream"), true},
		{errors.New("HTTP 429"), true},
		{errors.New("error 529"), true},
		{errors.New("RESOURCE EXHAUSTED"), true},
		{errors.New("service unavailable"), true},
		{errors.New("Too Many Requests"), true},
		{errors.New("rate limit exceeded"), true},
		{errors.New("quota exceeded for project"), true},
		{errors.New("model at capacity"), true},
		{errors.New("invalid api key"), false},
		{errors.New("malformed tool arguments"), false},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
