package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory, for testing and local
// development. All list operations are atomic under a single mutex, so it
// honors the same indivisible-move contract as the Redis implementation.
type MemoryStore struct {
	mu      sync.Mutex
	lists   map[string][][]byte
	values  map[string]memoryValue
	offline bool
}

type memoryValue struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:  make(map[string][][]byte),
		values: make(map[string]memoryValue),
	}
}

// SetOffline toggles simulated connectivity loss: while offline every
// operation fails the way a dead Redis connection would.
func (ms *MemoryStore) SetOffline(offline bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.offline = offline
}

var errMemoryStoreOffline = errors.New("memory store is offline")

func (ms *MemoryStore) checkOnline() error {
	if ms.offline {
		return errMemoryStoreOffline
	}
	return nil
}

func (ms *MemoryStore) AppendRight(ctx context.Context, listKey string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return err
	}
	ms.lists[listKey] = append(ms.lists[listKey], clone(value))
	return nil
}

func (ms *MemoryStore) AppendLeft(ctx context.Context, listKey string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return err
	}
	ms.lists[listKey] = append([][]byte{clone(value)}, ms.lists[listKey]...)
	return nil
}

func (ms *MemoryStore) PopLeft(ctx context.Context, listKey string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return nil, err
	}
	return ms.popLeftLocked(listKey), nil
}

func (ms *MemoryStore) popLeftLocked(listKey string) []byte {
	list := ms.lists[listKey]
	if len(list) == 0 {
		return nil
	}
	head := list[0]
	ms.lists[listKey] = list[1:]
	return head
}

// MoveBlocking polls under the lock so the pop and the append are a single
// atomic step, exactly like BLMOVE.
func (ms *MemoryStore) MoveBlocking(ctx context.Context, sourceKey, destKey string, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		ms.mu.Lock()
		if err := ms.checkOnline(); err != nil {
			ms.mu.Unlock()
			return nil, err
		}
		if head := ms.popLeftLocked(sourceKey); head != nil {
			ms.lists[destKey] = append(ms.lists[destKey], head)
			ms.mu.Unlock()
			return head, nil
		}
		ms.mu.Unlock()

		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (ms *MemoryStore) RemoveOne(ctx context.Context, listKey string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return err
	}
	list := ms.lists[listKey]
	for i, item := range list {
		if bytes.Equal(item, value) {
			ms.lists[listKey] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (ms *MemoryStore) Len(ctx context.Context, listKey string) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return 0, err
	}
	return int64(len(ms.lists[listKey])), nil
}

func (ms *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return err
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	ms.values[key] = memoryValue{data: clone(value), expiresAt: expiresAt}
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return nil, err
	}
	val, ok := ms.values[key]
	if !ok {
		return nil, nil
	}
	if !val.expiresAt.IsZero() && time.Now().After(val.expiresAt) {
		delete(ms.values, key)
		return nil, nil
	}
	return clone(val.data), nil
}

func (ms *MemoryStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err := ms.checkOnline(); err != nil {
		return err
	}
	delete(ms.values, key)
	return nil
}

func (ms *MemoryStore) Ping(ctx context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.checkOnline()
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
