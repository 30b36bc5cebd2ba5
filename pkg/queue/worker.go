package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RunWorker starts the single long-lived worker loop for this queue.
// Exactly one loop may run per queue instance; a second call returns
// ErrWorkerAlreadyStarted. The loop runs until ctx is canceled and survives
// arbitrarily many job failures and store outages.
func (q *Queue) RunWorker(ctx context.Context, handler Handler) error {
	if handler == nil {
		return ErrHandlerNil
	}
	if !q.started.CompareAndSwap(false, true) {
		return ErrWorkerAlreadyStarted
	}

	go q.run(ctx, handler)

	q.logger.Info("worker started", slog.String("queue", q.keyPrefix))
	return nil
}

// run claims jobs one at a time: health gate, blocking move from waiting to
// processing, then dispatch. Errors are logged and drive the job's own retry
// state machine; they never terminate the loop.
func (q *Queue) run(ctx context.Context, handler Handler) {
	for {
		if ctx.Err() != nil {
			q.logger.Info("worker stopped", slog.String("queue", q.keyPrefix))
			return
		}

		if !q.health.Healthy(ctx) {
			q.logger.Warn("store unhealthy, backing off",
				slog.String("queue", q.keyPrefix),
				slog.Duration("backoff", q.cfg.UnhealthyBackoff))
			sleepCtx(ctx, q.cfg.UnhealthyBackoff)
			continue
		}

		raw, err := q.store.MoveBlocking(ctx, q.waitingKey, q.processingKey, q.cfg.ClaimTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			q.logger.Error("failed to claim job",
				slog.String("queue", q.keyPrefix),
				slog.String("error", err.Error()))
			sleepCtx(ctx, q.cfg.ClaimTimeout)
			continue
		}
		if raw == nil {
			// Blocking timeout with an empty queue, just poll again.
			continue
		}

		q.process(ctx, handler, raw)
	}
}

// process owns one claimed record: the raw bytes stay untouched so the
// record can be released from the processing list by exact value.
func (q *Queue) process(ctx context.Context, handler Handler, raw []byte) {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		q.logger.Error("dropping undecodable job record",
			slog.String("queue", q.keyPrefix),
			slog.String("error", err.Error()))
		q.release(ctx, raw)
		return
	}

	job.MarkProcessing()
	q.persistJob(ctx, &job)

	q.logger.Debug("processing job",
		slog.String("queue", q.keyPrefix),
		slog.String("job_id", job.ID),
		slog.Int("attempt", job.Attempts),
		slog.Int("max_retries", job.MaxRetries))

	start := time.Now()
	err := q.invoke(ctx, handler, &job)
	duration := time.Since(start)

	if err != nil {
		q.fail(ctx, &job, raw, err, duration)
		return
	}
	q.complete(ctx, &job, raw, duration)
}

// invoke runs the handler under the job's timeout. The handler executes in
// its own goroutine so a deadline overrun is declared promptly even when the
// handler ignores its context; the goroutine itself is not forcibly aborted
// and must honor ctx to stop early.
func (q *Queue) invoke(ctx context.Context, handler Handler, job *Job) error {
	hctx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in handler: %v", r)
			}
		}()
		done <- handler.Handle(hctx, job)
	}()

	select {
	case err := <-done:
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			return errors.Join(ErrHandlerTimeout, err)
		}
		return err
	case <-hctx.Done():
		return errors.Join(ErrHandlerTimeout, hctx.Err())
	}
}

// complete releases the record from processing, then deletes it or archives
// it to the succeeded list per configuration.
func (q *Queue) complete(ctx context.Context, job *Job, raw []byte, duration time.Duration) {
	q.release(ctx, raw)
	job.MarkCompleted()

	if q.cfg.RemoveOnSuccess {
		q.deleteRecord(ctx, job)
	} else {
		q.archive(ctx, job, q.succeededKey)
	}

	q.logger.Info("job completed",
		slog.String("queue", q.keyPrefix),
		slog.String("job_id", job.ID),
		slog.Int("attempts", job.Attempts),
		slog.Duration("duration", duration))
}

// fail decides between retry and permanent failure. Serialization errors
// are permanent regardless of remaining retries since re-running the handler
// cannot fix an undecodable payload.
func (q *Queue) fail(ctx context.Context, job *Job, raw []byte, execErr error, duration time.Duration) {
	q.release(ctx, raw)

	if job.CanRetry() && !errors.Is(execErr, ErrSerialization) {
		job.MarkRetrying(execErr.Error())
		q.persistJob(ctx, job)

		delay := backoffDelay(job.BackoffBase, job.Attempts-1, q.maxBackoff)
		q.logger.Warn("job failed, scheduling retry",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.Int("attempt", job.Attempts),
			slog.Int("max_retries", job.MaxRetries),
			slog.Duration("backoff", delay),
			slog.Duration("duration", duration),
			slog.String("error", execErr.Error()))

		// The worker pauses for the whole backoff window; retried jobs
		// re-enter at the tail and lose their original position.
		sleepCtx(ctx, delay)
		q.requeue(ctx, job)
		return
	}

	job.MarkFailed(execErr.Error())

	if q.cfg.RemoveOnFailure {
		q.deleteRecord(ctx, job)
	} else {
		q.archive(ctx, job, q.failedKey)
	}

	q.logger.Error("job failed permanently",
		slog.String("queue", q.keyPrefix),
		slog.String("job_id", job.ID),
		slog.Int("attempts", job.Attempts),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))
}

// opCtx derives a deadline-bound context for cleanup operations that must
// proceed even when the worker context is already canceled, so a shutdown
// mid-job does not leave records stranded in processing.
func (q *Queue) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), q.cfg.OpTimeout)
}

// release removes the claimed raw record from the processing list.
func (q *Queue) release(ctx context.Context, raw []byte) {
	opCtx, cancel := q.opCtx(ctx)
	defer cancel()

	if err := q.store.RemoveOne(opCtx, q.processingKey, raw); err != nil {
		q.logger.Warn("failed to release job from processing list",
			slog.String("queue", q.keyPrefix),
			slog.String("error", err.Error()))
	}
}

// deleteRecord drops the job key so the record is gone immediately instead
// of waiting out its TTL.
func (q *Queue) deleteRecord(ctx context.Context, job *Job) {
	opCtx, cancel := q.opCtx(ctx)
	defer cancel()

	if err := q.store.Delete(opCtx, q.jobKey(job.ID)); err != nil {
		q.logger.Warn("failed to delete job record",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}

// requeue appends the updated record to the waiting tail and refreshes its
// key so the retry carries forward attempts and status.
func (q *Queue) requeue(ctx context.Context, job *Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		q.logger.Error("failed to encode job for retry",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return
	}

	opCtx, cancel := q.opCtx(ctx)
	defer cancel()

	if err := q.store.AppendRight(opCtx, q.waitingKey, raw); err != nil {
		q.logger.Error("failed to re-enqueue job",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return
	}
	if err := q.store.SetWithTTL(opCtx, q.jobKey(job.ID), raw, q.cfg.JobTTL); err != nil {
		q.logger.Warn("failed to refresh job record for retry",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}

// archive pushes the terminal record to an archive list and keeps its key
// readable until the TTL expires.
func (q *Queue) archive(ctx context.Context, job *Job, listKey string) {
	raw, err := json.Marshal(job)
	if err != nil {
		q.logger.Error("failed to encode job for archive",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
		return
	}

	opCtx, cancel := q.opCtx(ctx)
	defer cancel()

	if err := q.store.AppendLeft(opCtx, listKey, raw); err != nil {
		q.logger.Warn("failed to archive job",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("key", listKey),
			slog.String("error", err.Error()))
	}
	if err := q.store.SetWithTTL(opCtx, q.jobKey(job.ID), raw, q.cfg.JobTTL); err != nil {
		q.logger.Warn("failed to persist terminal job record",
			slog.String("queue", q.keyPrefix),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()))
	}
}
