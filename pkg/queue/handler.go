package queue

import (
	"context"
	"encoding/json"
	"fmt"
)

type (
	// Handler processes one claimed job per invocation. It may be called
	// multiple times for the same job id across retries, so side effects
	// must be idempotent.
	Handler interface {
		Handle(ctx context.Context, job *Job) error
	}

	// HandlerFunc adapts a plain function to the Handler interface.
	HandlerFunc func(ctx context.Context, job *Job) error

	// TypedHandlerFunc is a handler over a decoded payload of type T.
	TypedHandlerFunc[T any] func(ctx context.Context, payload T) error
)

func (f HandlerFunc) Handle(ctx context.Context, job *Job) error {
	return f(ctx, job)
}

// NewHandler wraps a typed function into a Handler that decodes the job's
// opaque payload into T before invoking it. A payload that does not decode
// is a non-retryable serialization error.
func NewHandler[T any](handler TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, job *Job) error {
		var payload T
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("%w: decode payload of job %s: %w", ErrSerialization, job.ID, err)
		}
		return handler(ctx, payload)
	})
}
