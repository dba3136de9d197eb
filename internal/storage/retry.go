package storage

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryBackend retries transient failures of a network backend with
// exponential backoff. ErrNotFound and context errors are never retried.
type RetryBackend struct {
	inner      Backend
	maxRetries int
	baseDelay  time.Duration
}

func WithRetry(b Backend, maxRetries int) *RetryBackend {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryBackend{inner: b, maxRetries: maxRetries, baseDelay: 200 * time.Millisecond}
}

func (r *RetryBackend) Name() string { return r.inner.Name() }

func (r *RetryBackend) Close() error { return r.inner.Close() }

// Ping is not retried so health checks report the first failure.
func (r *RetryBackend) Ping(ctx context.Context) error { return r.inner.Ping(ctx) }

func (r *RetryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "get", key, func() error {
		var err error
		data, err = r.inner.Get(ctx, key)
		return err
	})
	return data, err
}

func (r *RetryBackend) Put(ctx context.Context, key string, data []byte) error {
	return r.do(ctx, "put", key, func() error {
		return r.inner.Put(ctx, key, data)
	})
}

func (r *RetryBackend) do(ctx context.Context, op, key string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}
		log.WithFields(log.Fields{
			"backend": r.inner.Name(),
			"op":      op,
			"key":     key,
			"attempt": attempt + 1,
		}).WithError(err).Debug("retrying storage operation")
		if err := r.backoff(ctx, attempt); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "reset by peer", "broken pipe", "timeout", "eof", "503", "slowdown", "internalerror", "too many connections"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (r *RetryBackend) backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(r.baseDelay) * math.Pow(2, float64(attempt)))
	if delay > 5*time.Second {
		delay = 5 * time.Second
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
