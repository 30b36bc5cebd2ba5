package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/redisq/pkg/queue"
)

// testConfig keeps every engine delay short enough for fast tests.
func testConfig() queue.Config {
	return queue.Config{
		Environment:        "test",
		ClaimTimeout:       50 * time.Millisecond,
		HealthTimeout:      100 * time.Millisecond,
		OpTimeout:          time.Second,
		EnqueueTimeout:     time.Second,
		UnhealthyBackoff:   20 * time.Millisecond,
		DefaultMaxRetries:  3,
		DefaultJobTimeout:  time.Second,
		DefaultBackoffBase: 5 * time.Millisecond,
		RemoveOnSuccess:    false,
		RemoveOnFailure:    false,
	}
}

func newTestManager(t *testing.T, store *queue.MemoryStore, cfg queue.Config) *queue.Manager {
	t.Helper()
	m, err := queue.NewManagerWithStore(store, cfg,
		queue.WithManagerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return m
}

type testPayload struct {
	Message string `json:"message"`
}

func TestQueue_Enqueue(t *testing.T) {
	t.Parallel()

	t.Run("persists record and appends to waiting", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := queue.NewMemoryStore()
		q := newTestManager(t, store, testConfig()).CreateQueue("emails")

		jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
		require.NoError(t, err)
		require.NotEmpty(t, jobID)

		stats, err := q.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Waiting)
		assert.Equal(t, int64(0), stats.Processing)

		record, err := store.Get(ctx, "test_emails_queue:job:"+jobID)
		require.NoError(t, err)
		assert.NotNil(t, record, "record must be readable by id right after enqueue")
	})

	t.Run("fails fast when store is down", func(t *testing.T) {
		t.Parallel()

		store := queue.NewMemoryStore()
		q := newTestManager(t, store, testConfig()).CreateQueue("emails")
		store.SetOffline(true)

		start := time.Now()
		_, err := q.Enqueue(context.Background(), testPayload{Message: "hi"})
		assert.ErrorIs(t, err, queue.ErrStoreUnavailable)
		assert.Less(t, time.Since(start), time.Second, "bounded by the health deadline")
	})

	t.Run("rejects unencodable payload", func(t *testing.T) {
		t.Parallel()

		q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("emails")

		_, err := q.Enqueue(context.Background(), func() {})
		assert.ErrorIs(t, err, queue.ErrSerialization)
	})
}

func TestQueue_WorkerCompletesJob(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := queue.NewMemoryStore()
	q := newTestManager(t, store, testConfig()).CreateQueue("emails")

	var handled atomic.Int32
	handler := queue.NewHandler(func(ctx context.Context, p testPayload) error {
		handled.Add(1)
		return nil
	})
	require.NoError(t, q.RunWorker(ctx, handler))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, result.Status)
	assert.Empty(t, result.Error)
	assert.Equal(t, int32(1), handled.Load())

	require.Eventually(t, func() bool {
		stats, err := q.Stats(ctx)
		return err == nil && stats.Waiting == 0 && stats.Processing == 0 && stats.Succeeded == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueue_WorkerDeletesRecordWhenArchivalDisabled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig()
	cfg.RemoveOnSuccess = true
	store := queue.NewMemoryStore()
	q := newTestManager(t, store, cfg).CreateQueue("emails")

	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		return nil
	})))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		record, err := store.Get(ctx, "test_emails_queue:job:"+jobID)
		return err == nil && record == nil
	}, 2*time.Second, 10*time.Millisecond, "record deleted on success")

	_, err = q.GetJobResult(ctx, jobID, 100*time.Millisecond)
	assert.ErrorIs(t, err, queue.ErrJobNotFound)
}

func TestQueue_FIFOOrder(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("ordered")

	for _, msg := range []string{"A", "B", "C"} {
		_, err := q.Enqueue(ctx, testPayload{Message: msg})
		require.NoError(t, err)
	}

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		mu.Lock()
		order = append(order, p.Message)
		finished := len(order) == 3
		mu.Unlock()
		if finished {
			close(done)
		}
		return nil
	})))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs not processed in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestQueue_RetryThenSucceed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := queue.NewMemoryStore()
	q := newTestManager(t, store, testConfig()).CreateQueue("flaky", queue.WithMaxRetries(5))

	const failures = 2
	var calls atomic.Int32
	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		if calls.Add(1) <= failures {
			return errors.New("transient failure")
		}
		return nil
	})))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, result.Status)
	assert.Equal(t, int32(failures+1), calls.Load())

	record, err := store.Get(ctx, "test_flaky_queue:job:"+jobID)
	require.NoError(t, err)
	require.NotNil(t, record)
	var job queue.Job
	require.NoError(t, json.Unmarshal(record, &job))
	assert.Equal(t, failures+1, job.Attempts, "attempts equals failures plus the success")
}

func TestQueue_RetriesExhausted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := queue.NewMemoryStore()
	q := newTestManager(t, store, testConfig()).CreateQueue("doomed", queue.WithMaxRetries(2))

	var calls atomic.Int32
	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		calls.Add(1)
		return errors.New("always fails")
	})))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "always fails")
	assert.Equal(t, int32(2), calls.Load(), "max_retries bounds handler invocations")

	require.Eventually(t, func() bool {
		stats, err := q.Stats(ctx)
		return err == nil && stats.Waiting == 0 && stats.Processing == 0 && stats.Failed == 1
	}, 2*time.Second, 10*time.Millisecond, "terminal job absent from waiting and processing, archived to failed")

	record, err := store.Get(ctx, "test_doomed_queue:job:"+jobID)
	require.NoError(t, err)
	require.NotNil(t, record)
	var job queue.Job
	require.NoError(t, json.Unmarshal(record, &job))
	assert.Equal(t, 2, job.Attempts)
	assert.Equal(t, queue.StatusFailed, job.Status)
}

func TestQueue_HandlerTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("slow",
		queue.WithMaxRetries(1),
		queue.WithJobTimeout(30*time.Millisecond),
	)

	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "handler execution timed out")
}

func TestQueue_HandlerPanicIsFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("panicky",
		queue.WithMaxRetries(1))

	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		panic("kaboom")
	})))

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "panic in handler")
}

func TestQueue_RunWorkerIdempotent(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("single")
	handler := queue.NewHandler(func(ctx context.Context, p testPayload) error { return nil })

	require.NoError(t, q.RunWorker(ctx, handler))
	assert.ErrorIs(t, q.RunWorker(ctx, handler), queue.ErrWorkerAlreadyStarted)
	assert.ErrorIs(t, q.RunWorker(ctx, nil), queue.ErrHandlerNil)
}

func TestQueue_WorkerSurvivesOutage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := queue.NewMemoryStore()
	q := newTestManager(t, store, testConfig()).CreateQueue("resilient")

	require.NoError(t, q.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p testPayload) error {
		return nil
	})))

	store.SetOffline(true)
	time.Sleep(100 * time.Millisecond)
	store.SetOffline(false)

	jobID, err := q.Enqueue(ctx, testPayload{Message: "hi"})
	require.NoError(t, err)

	result, err := q.GetJobResult(ctx, jobID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, result.Status, "worker resumes after the store comes back")
}

func TestQueue_GetJobResult(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("lookup")
		_, err := q.GetJobResult(context.Background(), "no-such-id", 100*time.Millisecond)
		assert.ErrorIs(t, err, queue.ErrJobNotFound)
	})

	t.Run("times out on non-terminal job", func(t *testing.T) {
		t.Parallel()

		q := newTestManager(t, queue.NewMemoryStore(), testConfig()).CreateQueue("stuck")

		// No worker running, so the job never leaves waiting.
		jobID, err := q.Enqueue(context.Background(), testPayload{Message: "hi"})
		require.NoError(t, err)

		_, err = q.GetJobResult(context.Background(), jobID, 200*time.Millisecond)
		assert.ErrorIs(t, err, queue.ErrResultTimeout)
	})
}

func TestQueue_StatsUnavailable(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	q := newTestManager(t, store, testConfig()).CreateQueue("stats")
	store.SetOffline(true)

	_, err := q.Stats(context.Background())
	assert.ErrorIs(t, err, queue.ErrStoreUnavailable)
}
