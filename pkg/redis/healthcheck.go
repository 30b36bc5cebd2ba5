package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Healthcheck returns a probe function suitable for liveness and readiness
// endpoints. The probe fails when the server does not answer a ping; the
// underlying error is wrapped so callers can log the cause while matching
// on ErrHealthcheckFailed.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// HealthcheckWithTimeout bounds each probe with its own deadline, for
// callers whose context is long-lived (worker loops, signal-driven mains)
// and would otherwise let a dead server stall the probe indefinitely.
func HealthcheckWithTimeout(client redis.UniversalClient, timeout time.Duration) func(context.Context) error {
	probe := Healthcheck(client)
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return probe(ctx)
	}
}
