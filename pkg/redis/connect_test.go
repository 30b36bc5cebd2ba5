package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/redisq/pkg/redis"
)

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	cfg := redis.Config{
		ConnectionURL:  "not-a-redis-url",
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: time.Second,
	}

	client, err := redis.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, redis.ErrFailedToParseConnString)
	assert.Nil(t, client)
}

func TestConnect_UnreachableServer(t *testing.T) {
	t.Parallel()

	// Reserved TEST-NET address, nothing listens there.
	cfg := redis.Config{
		ConnectionURL:  "redis://192.0.2.1:6379/0",
		RetryAttempts:  1,
		RetryInterval:  time.Millisecond,
		ConnectTimeout: 500 * time.Millisecond,
	}

	client, err := redis.Connect(context.Background(), cfg)
	assert.ErrorIs(t, err, redis.ErrNotReady)
	assert.Nil(t, client)
}
