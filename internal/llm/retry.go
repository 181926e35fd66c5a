package llm

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/nightjar-app/nightjar/internal/logger"
)

const (
	maxRetries     = 4
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Substrings that mark a provider error as transient. Providers surface
// overload and throttling as plain text, so classification is by message.
var retryableKeywords = []string{
	"overloaded",
	"503",
	"429",
	"529",
	"resource exhausted",
	"unavailable",
	"too many requests",
	"rate limit",
	"quota",
	"capacity",
}

// IsRetryable reports whether err looks like a transient provider failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, kw := range retryableKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// sleep is a variable so tests can run retries without waiting.
var sleep = sleepContext

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn, retrying transient failures up to maxRetries times with
// exponential backoff plus jitter, capped at maxBackoff. Terminal errors
// return immediately; after the last attempt the last error is returned
// unchanged. Only the calling goroutine blocks between attempts.
func Do[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == maxRetries {
			return zero, lastErr
		}

		wait := initialBackoff*time.Duration(1<<attempt) + time.Duration(rand.Int63n(int64(time.Second)))
		if wait > maxBackoff {
			wait = maxBackoff
		}

		logger.Warn("provider call failed, retrying",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"wait", wait,
			"error", err)

		if err := sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
