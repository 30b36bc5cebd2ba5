package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// resultPollInterval is how often GetJobResult re-reads the job record.
const resultPollInterval = 500 * time.Millisecond

// Queue is the per-name service: enqueue, worker loop, result lookup, and
// statistics. Create instances through Manager.CreateQueue.
type Queue struct {
	name      string
	keyPrefix string

	waitingKey    string
	processingKey string
	succeededKey  string
	failedKey     string

	store  Store
	health *healthMonitor
	cfg    Config
	logger *slog.Logger

	maxRetries  int
	jobTimeout  time.Duration
	backoffBase time.Duration
	maxBackoff  time.Duration

	started atomic.Bool
}

func newQueue(name, keyPrefix string, store Store, cfg Config, logger *slog.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		name:          name,
		keyPrefix:     keyPrefix,
		waitingKey:    keyPrefix + ":waiting",
		processingKey: keyPrefix + ":processing",
		succeededKey:  keyPrefix + ":succeeded",
		failedKey:     keyPrefix + ":failed",
		store:         store,
		health:        newHealthMonitor(store, cfg.HealthTimeout),
		cfg:           cfg,
		logger:        logger,
		maxRetries:    cfg.DefaultMaxRetries,
		jobTimeout:    cfg.DefaultJobTimeout,
		backoffBase:   cfg.DefaultBackoffBase,
		maxBackoff:    cfg.MaxBackoff,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Name returns the fully namespaced queue key prefix.
func (q *Queue) Name() string {
	return q.keyPrefix
}

func (q *Queue) jobKey(id string) string {
	return q.keyPrefix + ":job:" + id
}

// Enqueue serializes payload into a job record, persists the record under
// its id, and appends it to the waiting list. It fails fast with
// ErrStoreUnavailable when the health probe reports the store down, so a
// dead Redis produces a quick error instead of a slow timeout.
func (q *Queue) Enqueue(ctx context.Context, payload any) (string, error) {
	if !q.health.Healthy(ctx) {
		return "", ErrStoreUnavailable
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload of type %T: %w", ErrSerialization, payload, err)
	}

	job := NewJob(data, q.maxRetries, q.jobTimeout, q.backoffBase)
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("%w: encode job %s: %w", ErrSerialization, job.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, q.cfg.EnqueueTimeout)
	defer cancel()

	if err := q.store.SetWithTTL(ctx, q.jobKey(job.ID), raw, q.cfg.JobTTL); err != nil {
		return "", q.storeErr("persist job record", err)
	}
	if err := q.store.AppendRight(ctx, q.waitingKey, raw); err != nil {
		return "", q.storeErr("append job to waiting list", err)
	}

	q.logger.Debug("job enqueued",
		slog.String("queue", q.keyPrefix),
		slog.String("job_id", job.ID))

	return job.ID, nil
}

// GetJobResult polls the job record until it reaches a terminal status or
// timeout elapses. Returns ErrJobNotFound when the record never existed or
// already expired, ErrResultTimeout when the deadline fires first.
func (q *Queue) GetJobResult(ctx context.Context, jobID string, timeout time.Duration) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(resultPollInterval)
	defer ticker.Stop()

	for {
		raw, err := q.store.Get(ctx, q.jobKey(jobID))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrResultTimeout
			}
			return nil, q.storeErr("read job record", err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}

		var job Job
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("%w: decode job %s: %w", ErrSerialization, jobID, err)
		}
		if job.Status.Terminal() {
			return &Result{JobID: job.ID, Status: job.Status, Error: job.Error}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrResultTimeout
		case <-ticker.C:
		}
	}
}

// Stats holds the lengths of the queue's four lists.
type Stats struct {
	Waiting    int64 `json:"waiting"`
	Processing int64 `json:"processing"`
	Succeeded  int64 `json:"succeeded"`
	Failed     int64 `json:"failed"`
}

// Stats returns the current list lengths. The call fails fast when the
// store is down; individual read errors degrade to a zero count so one bad
// read does not hide the rest.
func (q *Queue) Stats(ctx context.Context) (*Stats, error) {
	if !q.health.Healthy(ctx) {
		return nil, ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, q.cfg.OpTimeout)
	defer cancel()

	return &Stats{
		Waiting:    q.listLen(ctx, q.waitingKey),
		Processing: q.listLen(ctx, q.processingKey),
		Succeeded:  q.listLen(ctx, q.succeededKey),
		Failed:     q.listLen(ctx, q.failedKey),
	}, nil
}

func (q *Queue) listLen(ctx context.Context, key string) int64 {
	n, err := q.store.Len(ctx, key)
	if err != nil {
		q.logger.Warn("failed to read list length",
			slog.String("queue", q.keyPrefix),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return 0
	}
	return n
}

// persistJob writes the record back under its key with a refreshed TTL.
// Best effort: introspection must never break the worker loop.
func (q *Queue) persistJob(ctx context.Context, job *Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		q.logger.Error("failed to encode job record",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return
	}
	opCtx, cancel := q.opCtx(ctx)
	defer cancel()

	if err := q.store.SetWithTTL(opCtx, q.jobKey(job.ID), raw, q.cfg.JobTTL); err != nil {
		q.logger.Warn("failed to persist job record",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}

// storeErr converts adapter failures into the package taxonomy: deadline
// overruns become ErrStoreTimeout, everything else is wrapped with context.
func (q *Queue) storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrStoreTimeout, fmt.Errorf("%s on queue %q: %w", op, q.keyPrefix, err))
	}
	return fmt.Errorf("%s on queue %q: %w", op, q.keyPrefix, err)
}

// sleepCtx sleeps d unless ctx is canceled first; reports whether the full
// sleep completed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
