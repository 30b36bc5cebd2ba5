package queue

import (
	"log/slog"
	"time"
)

// QueueOption is a functional option applied when a queue is first created.
type QueueOption func(*Queue)

// WithMaxRetries sets the retry ceiling for jobs enqueued on this queue.
func WithMaxRetries(n int) QueueOption {
	return func(q *Queue) {
		if n >= 0 {
			q.maxRetries = n
		}
	}
}

// WithJobTimeout bounds a single handler invocation for this queue's jobs.
func WithJobTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.jobTimeout = d
		}
	}
}

// WithBackoffBase sets the base delay for exponential retry backoff.
func WithBackoffBase(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.backoffBase = d
		}
	}
}

// WithMaxBackoff clamps the exponential backoff delay for this queue.
// Zero keeps unbounded growth.
func WithMaxBackoff(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d >= 0 {
			q.maxBackoff = d
		}
	}
}

// WithQueueLogger overrides the logger inherited from the manager.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}
