package queue

import "time"

// Config holds the engine-wide settings shared by every queue created from
// one Manager.
type Config struct {
	// Environment prefixes every queue key so deployments sharing one Redis
	// instance do not collide.
	Environment string `env:"QUEUE_ENVIRONMENT" envDefault:"development"`

	// JobTTL bounds how long a job record stays readable by id.
	JobTTL time.Duration `env:"QUEUE_JOB_TTL" envDefault:"24h"`

	// ClaimTimeout is how long a worker blocks waiting for a job to appear.
	ClaimTimeout time.Duration `env:"QUEUE_CLAIM_TIMEOUT" envDefault:"5s"`

	// HealthTimeout is the deadline for the liveness probe.
	HealthTimeout time.Duration `env:"QUEUE_HEALTH_TIMEOUT" envDefault:"2s"`

	// OpTimeout is the deadline for individual store operations inside the
	// worker loop (release, archive, re-enqueue).
	OpTimeout time.Duration `env:"QUEUE_OP_TIMEOUT" envDefault:"3s"`

	// EnqueueTimeout is the deadline for the whole enqueue operation.
	EnqueueTimeout time.Duration `env:"QUEUE_ENQUEUE_TIMEOUT" envDefault:"5s"`

	// UnhealthyBackoff is how long the worker sleeps after a failed health
	// check before probing again, instead of busy-polling a dead store.
	UnhealthyBackoff time.Duration `env:"QUEUE_UNHEALTHY_BACKOFF" envDefault:"10s"`

	// DefaultMaxRetries applies to queues created without WithMaxRetries.
	DefaultMaxRetries int `env:"QUEUE_DEFAULT_MAX_RETRIES" envDefault:"3"`

	// DefaultJobTimeout bounds a single handler invocation.
	DefaultJobTimeout time.Duration `env:"QUEUE_DEFAULT_JOB_TIMEOUT" envDefault:"60s"`

	// DefaultBackoffBase is the base delay for exponential retry backoff.
	DefaultBackoffBase time.Duration `env:"QUEUE_DEFAULT_BACKOFF_BASE" envDefault:"2s"`

	// MaxBackoff clamps the exponential backoff delay. Zero leaves the
	// growth unbounded.
	MaxBackoff time.Duration `env:"QUEUE_MAX_BACKOFF" envDefault:"0"`

	// RemoveOnSuccess deletes the job record on success instead of archiving
	// it to the succeeded list.
	RemoveOnSuccess bool `env:"QUEUE_REMOVE_ON_SUCCESS" envDefault:"true"`

	// RemoveOnFailure deletes the job record on permanent failure instead of
	// archiving it to the failed list.
	RemoveOnFailure bool `env:"QUEUE_REMOVE_ON_FAILURE" envDefault:"false"`
}

// applyDefaults fills zero-value duration and count fields so a hand-built
// Config behaves like an env-parsed one. The removal flags keep their zero
// values since false is meaningful there.
func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 24 * time.Hour
	}
	if c.ClaimTimeout <= 0 {
		c.ClaimTimeout = 5 * time.Second
	}
	if c.HealthTimeout <= 0 {
		c.HealthTimeout = 2 * time.Second
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = 3 * time.Second
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 5 * time.Second
	}
	if c.UnhealthyBackoff <= 0 {
		c.UnhealthyBackoff = 10 * time.Second
	}
	if c.DefaultMaxRetries <= 0 {
		c.DefaultMaxRetries = 3
	}
	if c.DefaultJobTimeout <= 0 {
		c.DefaultJobTimeout = 60 * time.Second
	}
	if c.DefaultBackoffBase <= 0 {
		c.DefaultBackoffBase = 2 * time.Second
	}
}
