package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the capability interface the engine requires from the backing
// key/value store: ordered lists with an atomic blocking move, plus plain
// get/set with expiry. Any store with these primitives can back a queue.
type Store interface {
	// AppendRight appends value to the tail of the list.
	AppendRight(ctx context.Context, listKey string, value []byte) error

	// AppendLeft prepends value to the head of the list.
	AppendLeft(ctx context.Context, listKey string, value []byte) error

	// PopLeft removes and returns the head of the list, or nil when empty.
	PopLeft(ctx context.Context, listKey string) ([]byte, error)

	// MoveBlocking blocks up to timeout for an item to appear at the head of
	// sourceKey, then atomically moves it to the tail of destKey and returns
	// it. Returns nil when the timeout elapses with no item. The move is
	// indivisible: no two consumers can receive the same item, and the item
	// is never observable outside both lists.
	MoveBlocking(ctx context.Context, sourceKey, destKey string, timeout time.Duration) ([]byte, error)

	// RemoveOne deletes the first occurrence of value from the list.
	RemoveOne(ctx context.Context, listKey string, value []byte) error

	// Len returns the length of the list.
	Len(ctx context.Context, listKey string) (int64, error)

	// SetWithTTL stores value under key with the given expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value under key, or nil when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Ping checks connectivity to the store.
	Ping(ctx context.Context) error
}

// redisStore implements Store over a go-redis client. BLMOVE LEFT→RIGHT
// preserves FIFO order between the waiting and processing lists.
type redisStore struct {
	db redis.UniversalClient
}

// NewRedisStore wraps a go-redis client in the Store interface.
func NewRedisStore(client redis.UniversalClient) (Store, error) {
	if client == nil {
		return nil, ErrClientNil
	}
	return &redisStore{db: client}, nil
}

func (s *redisStore) AppendRight(ctx context.Context, listKey string, value []byte) error {
	return s.db.RPush(ctx, listKey, value).Err()
}

func (s *redisStore) AppendLeft(ctx context.Context, listKey string, value []byte) error {
	return s.db.LPush(ctx, listKey, value).Err()
}

func (s *redisStore) PopLeft(ctx context.Context, listKey string) ([]byte, error) {
	val, err := s.db.LPop(ctx, listKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *redisStore) MoveBlocking(ctx context.Context, sourceKey, destKey string, timeout time.Duration) ([]byte, error) {
	val, err := s.db.BLMove(ctx, sourceKey, destKey, "LEFT", "RIGHT", timeout).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (s *redisStore) RemoveOne(ctx context.Context, listKey string, value []byte) error {
	return s.db.LRem(ctx, listKey, 1, value).Err()
}

func (s *redisStore) Len(ctx context.Context, listKey string) (int64, error) {
	return s.db.LLen(ctx, listKey).Result()
}

func (s *redisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.db.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.db.Del(ctx, key).Err()
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx).Err()
}
