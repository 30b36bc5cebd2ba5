// Package queue implements a Redis-backed background job queue with
// at-least-once delivery, exponential retry backoff, and queue introspection.
//
// The package is organised around four components:
//
//   - Job      — serialized envelope for a unit of work plus retry metadata
//   - Store    — capability interface over the backing key/value store
//   - Queue    — per-name service: enqueue, worker loop, results, stats
//   - Manager  — binds queue names to one shared store connection
//
// A queue keeps three Redis lists: waiting, processing, and an archive
// (succeeded or failed). Enqueue appends the serialized job to the waiting
// tail and stores the record under "<queue>:job:<id>" with a 24h TTL for
// out-of-band status lookup. The worker loop claims jobs with an atomic
// blocking move from waiting to processing (BLMOVE), so a job is delivered
// to exactly one worker at a time even with several worker processes on the
// same queue. List membership, not the advisory status field, decides
// scheduling.
//
// # Usage
//
//	client, err := redis.Connect(ctx, redisCfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manager, err := queue.NewManager(client, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	emails := manager.CreateQueue("emails", queue.WithMaxRetries(5))
//
//	type WelcomeEmail struct {
//	    To string `json:"to"`
//	}
//
//	err = emails.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p WelcomeEmail) error {
//	    return sender.Send(ctx, p.To)
//	}))
//
//	jobID, err := emails.Enqueue(ctx, WelcomeEmail{To: "user@example.com"})
//
// # Delivery semantics
//
// Delivery is at-least-once: a worker that crashes between claiming a job
// and acknowledging it leaves the record in the processing list, and
// handlers may run more than once for the same job id across retries.
// Handlers must therefore be idempotent. Records stranded in processing by
// a crashed worker are not reclaimed automatically; there is no
// processing-list sweep, so redeploys should drain workers gracefully.
//
// Jobs are served in FIFO order relative to enqueue time as long as no
// retries occur. A retried job re-enters the waiting list at the tail after
// its backoff delay, losing its original position. The backoff delay for
// retry n is backoff_base * 2^n and grows without bound unless a cap is set
// via Config.MaxBackoff or WithMaxBackoff.
//
// A handler invocation is bounded by the job's timeout; an overrun counts
// as a failed attempt. The handler goroutine is not forcibly aborted — it
// receives a deadline context and is expected to stop cooperatively.
//
// # Error Handling
//
// Package-level sentinel errors (ErrStoreUnavailable, ErrStoreTimeout,
// ErrSerialization, ErrJobNotFound, ...) can be checked with errors.Is.
// Enqueue-path errors return synchronously to the caller; worker-loop
// errors are logged and drive the job's retry state machine without ever
// terminating the loop.
package queue
