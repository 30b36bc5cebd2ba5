package queue

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Manager binds queue names to one shared store connection and guarantees a
// single logical queue per name per environment. There is no package-level
// instance; create one Manager at startup and pass it to whoever needs
// queues.
type Manager struct {
	cfg    Config
	store  Store
	logger *slog.Logger

	mu     sync.Mutex
	queues map[string]*Queue
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger inherited by every queue the manager
// creates.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over a shared go-redis client.
func NewManager(client redis.UniversalClient, cfg Config, opts ...ManagerOption) (*Manager, error) {
	store, err := NewRedisStore(client)
	if err != nil {
		return nil, err
	}
	return NewManagerWithStore(store, cfg, opts...)
}

// NewManagerWithStore creates a Manager over any Store implementation. Used
// directly with MemoryStore in tests and local development.
func NewManagerWithStore(store Store, cfg Config, opts ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	cfg.applyDefaults()

	m := &Manager{
		cfg:    cfg,
		store:  store,
		logger: slog.Default(),
		queues: make(map[string]*Queue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// CreateQueue returns the queue for name, creating it on first call.
// Repeated calls with the same name return the same instance; options are
// applied only on first creation. Keys are namespaced as
// "<environment>_<name>_queue" so environments sharing one Redis instance
// do not collide.
func (m *Manager) CreateQueue(name string, opts ...QueueOption) *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.queues[name]; ok {
		return q
	}

	q := newQueue(name, fmt.Sprintf("%s_%s_queue", m.cfg.Environment, name), m.store, m.cfg, m.logger, opts...)
	m.queues[name] = q
	return q
}
