// Package notifications wires email dispatch through the job queue: request
// handlers enqueue lightweight payloads and return immediately, while the
// queue worker performs the slow, unreliable delivery with retries.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/redisq/pkg/email"
	"github.com/dmitrymomot/redisq/pkg/queue"
)

// QueueName is the queue this module claims from the shared manager.
const QueueName = "notifications"

var (
	// ErrManagerNil is returned when a nil queue manager is provided
	ErrManagerNil = errors.New("queue manager cannot be nil")

	// ErrSenderNil is returned when a nil email sender is provided
	ErrSenderNil = errors.New("email sender cannot be nil")
)

// EmailNotification is the job payload for a single outbound email.
type EmailNotification struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

// Service enqueues email notifications and runs the worker that delivers
// them.
type Service struct {
	queue  *queue.Queue
	sender email.EmailSender
	logger *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the notifications service on its own queue.
func NewService(manager *queue.Manager, sender email.EmailSender, opts ...ServiceOption) (*Service, error) {
	if manager == nil {
		return nil, ErrManagerNil
	}
	if sender == nil {
		return nil, ErrSenderNil
	}

	s := &Service{
		queue:  manager.CreateQueue(QueueName, queue.WithMaxRetries(5)),
		sender: sender,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start launches the delivery worker. Call once at process startup.
func (s *Service) Start(ctx context.Context) error {
	return s.queue.RunWorker(ctx, queue.NewHandler(s.deliver))
}

// Notify enqueues an email for background delivery and returns the job id
// for later status lookup.
func (s *Service) Notify(ctx context.Context, n EmailNotification) (string, error) {
	jobID, err := s.queue.Enqueue(ctx, n)
	if err != nil {
		return "", fmt.Errorf("enqueue email notification: %w", err)
	}

	s.logger.Debug("email notification enqueued",
		slog.String("job_id", jobID),
		slog.String("send_to", n.SendTo),
		slog.String("tag", n.Tag))
	return jobID, nil
}

// Stats exposes the underlying queue's list lengths for operational
// dashboards.
func (s *Service) Stats(ctx context.Context) (*queue.Stats, error) {
	return s.queue.Stats(ctx)
}

// deliver is the queue handler. Delivery failures propagate to the engine,
// which retries with backoff until the job's retry ceiling.
func (s *Service) deliver(ctx context.Context, n EmailNotification) error {
	return s.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.SendTo,
		Subject:  n.Subject,
		BodyHTML: n.BodyHTML,
		Tag:      n.Tag,
	})
}
