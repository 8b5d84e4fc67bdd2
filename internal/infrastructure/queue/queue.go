package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default delivery policy: up to 3 attempts with exponential backoff starting
// at 2 seconds.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 2 * time.Second
)

// Priority controls where a job lands in the pending list.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// Job is a unit of work carried by the queue. Payloads carry identifiers only;
// handlers re-read current persisted state, which makes redelivery safe.
type Job struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	AttemptsMade int             `json:"attempts_made"`
	MaxAttempts  int             `json:"max_attempts"`
	BackoffBase  time.Duration   `json:"backoff_base"`
	EnqueuedAt   time.Time       `json:"enqueued_at"`
	LastError    string          `json:"last_error,omitempty"`
}

// DecodePayload unmarshals the job payload into v.
func (j *Job) DecodePayload(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", j.Type, err)
	}
	return nil
}

// NextDelay returns the backoff delay before the next attempt, doubling with
// each attempt already made.
func (j *Job) NextDelay() time.Duration {
	delay := j.BackoffBase
	for i := 1; i < j.AttemptsMade; i++ {
		delay *= 2
	}
	return delay
}

// Exhausted reports whether the job has used up all its attempts.
func (j *Job) Exhausted() bool {
	return j.AttemptsMade >= j.MaxAttempts
}

// HandlerFunc processes a single job. A non-nil error triggers a retry until
// the attempt limit is reached, after which the job is parked for manual
// retry.
type HandlerFunc func(ctx context.Context, job Job) error

// Enqueuer submits jobs for asynchronous execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any, opts ...Option) (uuid.UUID, error)
}

// Registry maps job types to handlers.
type Registry interface {
	Register(jobType string, handler HandlerFunc)
}

// Option customizes a single enqueue.
type Option func(*jobOptions)

type jobOptions struct {
	maxAttempts int
	backoffBase time.Duration
	priority    Priority
}

func defaultJobOptions() jobOptions {
	return jobOptions{
		maxAttempts: DefaultMaxAttempts,
		backoffBase: DefaultBackoffBase,
		priority:    PriorityNormal,
	}
}

// WithMaxAttempts overrides the attempt limit for one job.
func WithMaxAttempts(n int) Option {
	return func(o *jobOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithBackoff overrides the base retry delay for one job.
func WithBackoff(base time.Duration) Option {
	return func(o *jobOptions) {
		if base > 0 {
			o.backoffBase = base
		}
	}
}

// WithPriority moves the job ahead of normal-priority work.
func WithPriority(p Priority) Option {
	return func(o *jobOptions) {
		o.priority = p
	}
}

func newJob(jobType string, payload any, opts ...Option) (Job, Priority, error) {
	options := defaultJobOptions()
	for _, opt := range opts {
		opt(&options)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, options.priority, fmt.Errorf("failed to marshal %s payload: %w", jobType, err)
	}

	return Job{
		ID:          uuid.New(),
		Type:        jobType,
		Payload:     raw,
		MaxAttempts: options.maxAttempts,
		BackoffBase: options.backoffBase,
		EnqueuedAt:  time.Now(),
	}, options.priority, nil
}

// HandlerRegistry is a concurrency-safe job type to handler map shared by the
// queue implementations.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a job type, replacing any previous binding.
func (r *HandlerRegistry) Register(jobType string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

// Lookup returns the handler for a job type.
func (r *HandlerRegistry) Lookup(jobType string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}
