package queue

import "errors"

// Common errors
var (
	// ErrClientNil is returned when a nil redis client is provided
	ErrClientNil = errors.New("redis client cannot be nil")

	// ErrStoreNil is returned when a nil store is provided
	ErrStoreNil = errors.New("store cannot be nil")

	// ErrHandlerNil is returned when a nil handler is passed to RunWorker
	ErrHandlerNil = errors.New("handler cannot be nil")

	// ErrWorkerAlreadyStarted is returned when RunWorker is called more than once
	ErrWorkerAlreadyStarted = errors.New("worker already started for this queue")

	// ErrStoreUnavailable is returned when the health check fails before an operation
	ErrStoreUnavailable = errors.New("store is not available")

	// ErrStoreTimeout is returned when a store operation exceeds its deadline
	ErrStoreTimeout = errors.New("store operation timed out")

	// ErrSerialization is returned when a payload or job record cannot be encoded or decoded
	ErrSerialization = errors.New("failed to serialize job")

	// ErrJobNotFound is returned when a job id is unknown or its record has expired
	ErrJobNotFound = errors.New("job not found")

	// ErrResultTimeout is returned when GetJobResult's deadline elapses before a terminal status
	ErrResultTimeout = errors.New("timed out waiting for job result")

	// ErrHandlerTimeout marks a handler invocation that exceeded the job's timeout;
	// it drives the retry decision and is recorded in the job's error field
	ErrHandlerTimeout = errors.New("handler execution timed out")
)
