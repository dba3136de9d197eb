package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeanpaul/learnbot/internal/knowledge"
	"github.com/jeanpaul/learnbot/internal/storage"
)

type Status struct {
	Backend   string        `json:"backend"`
	Key       string        `json:"key,omitempty"`
	Reachable bool          `json:"reachable"`
	Entries   int           `json:"entries"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency"`
}

// Check verifies that the storage backend is reachable and, when key is
// set, that the record stored under it parses.
func Check(ctx context.Context, backend storage.Backend, key string) Status {
	s := Status{Backend: backend.Name(), Key: key}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := backend.Ping(ctx); err != nil {
		s.Error = fmt.Sprintf("cannot reach %s storage: %s", s.Backend, friendlyError(err))
		s.Latency = time.Since(start)
		return s
	}
	s.Reachable = true

	if key == "" {
		s.Latency = time.Since(start)
		return s
	}

	data, err := backend.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Nothing learned yet.
	case err != nil:
		s.Error = fmt.Sprintf("cannot read %q: %s", key, friendlyError(err))
	default:
		kb, err := knowledge.Decode(data)
		if err != nil {
			s.Error = fmt.Sprintf("record %q is malformed: %s", key, err)
		} else {
			s.Entries = kb.Len()
		}
	}
	s.Latency = time.Since(start)
	return s
}

// OK reports whether the check found nothing wrong.
func (s Status) OK() bool {
	return s.Reachable && s.Error == ""
}

func friendlyError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "connection refused (is the service running?)"
	}
	if strings.Contains(msg, "no such host") {
		return "host not found (check the endpoint)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out"
	}
	if strings.Contains(msg, "permission denied") {
		return "permission denied (check the storage path)"
	}
	return msg
}
