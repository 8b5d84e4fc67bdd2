package queue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// InMemoryQueue is a synchronous queue used in tests and single-process
// setups. Jobs accumulate until Drain is called; Drain applies the same
// attempt accounting as the Redis queue but retries immediately instead of
// waiting out the backoff.
type InMemoryQueue struct {
	mu       sync.Mutex
	pending  []Job
	failed   []Job
	registry *HandlerRegistry
	logger   *zap.Logger
	defaults []Option
}

// NewInMemoryQueue creates an empty in-memory queue. The given options become
// the queue-level delivery policy applied to every enqueue.
func NewInMemoryQueue(defaults ...Option) *InMemoryQueue {
	return &InMemoryQueue{
		registry: NewHandlerRegistry(),
		logger:   zap.NewNop(),
		defaults: defaults,
	}
}

// WithLogger sets the logger delivered to handlers through their context.
func (q *InMemoryQueue) WithLogger(l *zap.Logger) *InMemoryQueue {
	q.logger = l
	return q
}

// Register binds a handler to a job type.
func (q *InMemoryQueue) Register(jobType string, handler HandlerFunc) {
	q.registry.Register(jobType, handler)
}

// Enqueue appends a job to the pending list.
func (q *InMemoryQueue) Enqueue(_ context.Context, jobType string, payload any, opts ...Option) (uuid.UUID, error) {
	all := make([]Option, 0, len(q.defaults)+len(opts))
	all = append(all, q.defaults...)
	all = append(all, opts...)
	job, priority, err := newJob(jobType, payload, all...)
	if err != nil {
		return uuid.Nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if priority == PriorityHigh {
		q.pending = append([]Job{job}, q.pending...)
	} else {
		q.pending = append(q.pending, job)
	}
	return job.ID, nil
}

// Drain processes jobs until the pending list is empty, including jobs
// enqueued by handlers along the way. Failed jobs are retried up to their
// attempt limit and then parked.
func (q *InMemoryQueue) Drain(ctx context.Context) error {
	for {
		job, ok := q.pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		handler, registered := q.registry.Lookup(job.Type)
		if !registered {
			job.LastError = "no handler registered"
			q.parkJob(job)
			continue
		}

		job.AttemptsMade++
		jobCtx, _ := logger.WithJobID(ctx, q.logger, job.ID.String())
		if err := handler(jobCtx, job); err != nil {
			job.LastError = err.Error()
			if job.Exhausted() {
				q.parkJob(job)
			} else {
				q.requeue(job)
			}
		}
	}
}

// PendingCount returns the number of jobs awaiting execution.
func (q *InMemoryQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PendingJobs returns a copy of the pending list.
func (q *InMemoryQueue) PendingJobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := make([]Job, len(q.pending))
	copy(jobs, q.pending)
	return jobs
}

// FailedJobs returns jobs that exhausted their attempts.
func (q *InMemoryQueue) FailedJobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := make([]Job, len(q.failed))
	copy(jobs, q.failed)
	return jobs
}

func (q *InMemoryQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Job{}, false
	}
	job := q.pending[0]
	q.pending = q.pending[1:]
	return job, true
}

func (q *InMemoryQueue) requeue(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, job)
}

func (q *InMemoryQueue) parkJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = append(q.failed, job)
}

var (
	_ Enqueuer = (*InMemoryQueue)(nil)
	_ Registry = (*InMemoryQueue)(nil)
)
