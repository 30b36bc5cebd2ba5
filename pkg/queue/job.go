package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the advisory lifecycle stage of a job. List membership,
// not this field, is the source of truth for scheduling.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRetrying   Status = "retrying"
)

// Terminal reports whether the status is final (completed or failed).
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the serialized envelope for a unit of work plus its retry and
// timing metadata. The engine never inspects Payload.
type Job struct {
	ID          string          `json:"id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Status      Status          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxRetries  int             `json:"max_retries"`
	Timeout     time.Duration   `json:"timeout"`
	BackoffBase time.Duration   `json:"backoff_base"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Error       string          `json:"error,omitempty"`
}

// NewJob creates a waiting job with a generated id. Payload is stored as-is;
// timeout and backoff base come from the owning queue's configuration.
func NewJob(payload json.RawMessage, maxRetries int, timeout, backoffBase time.Duration) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:          uuid.NewString(),
		Payload:     payload,
		Status:      StatusWaiting,
		Attempts:    0,
		MaxRetries:  maxRetries,
		Timeout:     timeout,
		BackoffBase: backoffBase,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CanRetry reports whether the job may be re-enqueued after a failed attempt.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxRetries
}

// MarkProcessing records a dequeue attempt: the attempt counter increments
// exactly once per pickup, never anywhere else.
func (j *Job) MarkProcessing() {
	j.Attempts++
	j.Status = StatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

// MarkRetrying records a failed attempt that will be re-enqueued.
func (j *Job) MarkRetrying(errMsg string) {
	j.Status = StatusRetrying
	j.Error = errMsg
	j.UpdatedAt = time.Now().UTC()
}

// MarkCompleted records successful handler execution.
func (j *Job) MarkCompleted() {
	j.Status = StatusCompleted
	j.UpdatedAt = time.Now().UTC()
}

// MarkFailed records permanent failure after retries are exhausted.
func (j *Job) MarkFailed(errMsg string) {
	j.Status = StatusFailed
	j.Error = errMsg
	j.UpdatedAt = time.Now().UTC()
}

// Result is the terminal outcome of a job as observed via GetJobResult.
type Result struct {
	JobID  string `json:"job_id"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}
