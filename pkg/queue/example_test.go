package queue_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/redisq/pkg/queue"
)

// Example demonstrates the full lifecycle of a job over the in-memory store:
// enqueue, worker processing, and result lookup. Production code would pass
// a go-redis client to queue.NewManager instead.
func Example() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := queue.Config{
		Environment:  "example",
		ClaimTimeout: 50 * time.Millisecond,
	}

	manager, err := queue.NewManagerWithStore(queue.NewMemoryStore(), cfg,
		queue.WithManagerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		panic(err)
	}

	type WelcomeEmail struct {
		To string `json:"to"`
	}

	emails := manager.CreateQueue("emails", queue.WithMaxRetries(3))

	err = emails.RunWorker(ctx, queue.NewHandler(func(ctx context.Context, p WelcomeEmail) error {
		fmt.Printf("sending welcome email to %s\n", p.To)
		return nil
	}))
	if err != nil {
		panic(err)
	}

	jobID, err := emails.Enqueue(ctx, WelcomeEmail{To: "user@example.com"})
	if err != nil {
		panic(err)
	}

	result, err := emails.GetJobResult(ctx, jobID, 5*time.Second)
	if err != nil {
		panic(err)
	}
	fmt.Printf("job finished with status %s\n", result.Status)

	// Output:
	// sending welcome email to user@example.com
	// job finished with status completed
}
