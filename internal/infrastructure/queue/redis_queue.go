package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// RedisQueueConfig holds queue tuning knobs.
type RedisQueueConfig struct {
	Name        string        // logical queue name, used as key prefix
	Concurrency int           // worker goroutines pulling jobs
	PopTimeout  time.Duration // BRPOP blocking timeout
	PromoteTick time.Duration // how often due delayed jobs are promoted
	MaxAttempts int           // attempt limit for jobs enqueued without an override
	BackoffBase time.Duration // base retry delay for jobs enqueued without an override
}

// DefaultRedisQueueConfig returns the default worker-pool configuration.
func DefaultRedisQueueConfig(name string) RedisQueueConfig {
	return RedisQueueConfig{
		Name:        name,
		Concurrency: 5,
		PopTimeout:  time.Second,
		PromoteTick: 500 * time.Millisecond,
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
	}
}

// RedisQueue is a durable, at-least-once job queue on Redis.
//
// Layout:
//   - pending jobs:  list  queue:<name>:pending  (LPUSH in, BRPOP out)
//   - delayed jobs:  zset  queue:<name>:delayed  (score = ready-at unix ms)
//   - failed jobs:   hash  queue:<name>:failed   (job id -> terminal job)
//
// A failed attempt reschedules the job into the delayed set with exponential
// backoff; once attempts are exhausted the job is parked in the failed hash
// and surfaced for operator-triggered retry.
type RedisQueue struct {
	client   *redis.Client
	config   RedisQueueConfig
	registry *HandlerRegistry
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisQueue creates a queue bound to an existing Redis client.
func NewRedisQueue(client *redis.Client, config RedisQueueConfig, logger *zap.Logger) *RedisQueue {
	if config.Concurrency <= 0 {
		config.Concurrency = 5
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = time.Second
	}
	if config.PromoteTick <= 0 {
		config.PromoteTick = 500 * time.Millisecond
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = DefaultBackoffBase
	}
	return &RedisQueue{
		client:   client,
		config:   config,
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

func (q *RedisQueue) pendingKey() string { return "queue:" + q.config.Name + ":pending" }
func (q *RedisQueue) delayedKey() string { return "queue:" + q.config.Name + ":delayed" }
func (q *RedisQueue) failedKey() string  { return "queue:" + q.config.Name + ":failed" }

// Register binds a handler to a job type.
func (q *RedisQueue) Register(jobType string, handler HandlerFunc) {
	q.registry.Register(jobType, handler)
}

// Enqueue submits a job for asynchronous execution. The queue's configured
// delivery policy applies unless the call site overrides it.
func (q *RedisQueue) Enqueue(ctx context.Context, jobType string, payload any, opts ...Option) (uuid.UUID, error) {
	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithMaxAttempts(q.config.MaxAttempts), WithBackoff(q.config.BackoffBase))
	all = append(all, opts...)
	job, priority, err := newJob(jobType, payload, all...)
	if err != nil {
		return uuid.Nil, err
	}

	raw, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	// BRPOP consumes from the tail, so RPUSH jumps the line.
	push := q.client.LPush
	if priority == PriorityHigh {
		push = q.client.RPush
	}
	if err := push(ctx, q.pendingKey(), raw).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}

	q.logger.Debug("job enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", jobType),
	)
	return job.ID, nil
}

// Start launches the worker pool and the delayed-job promoter.
func (q *RedisQueue) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.config.Concurrency; i++ {
		q.wg.Add(1)
		go q.workerLoop(ctx, i)
	}

	q.wg.Add(1)
	go q.promoteLoop(ctx)

	q.logger.Info("queue workers started",
		zap.String("queue", q.config.Name),
		zap.Int("concurrency", q.config.Concurrency),
	)
	return nil
}

// Stop waits for in-flight jobs to finish.
func (q *RedisQueue) Stop(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("queue workers stopped", zap.String("queue", q.config.Name))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// workerLoop pulls jobs until the context is cancelled. Each job runs to
// completion on its worker goroutine; throughput scales by worker count.
func (q *RedisQueue) workerLoop(ctx context.Context, worker int) {
	defer q.wg.Done()

	log := q.logger.With(zap.String("queue", q.config.Name), zap.Int("worker", worker))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(ctx, q.config.PopTimeout, q.pendingKey()).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Error("failed to pop job", zap.Error(err))
			continue
		}
		// BRPOP returns [key, value]
		if len(res) != 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Error("failed to decode job, dropping", zap.Error(err))
			continue
		}

		q.runJob(ctx, log, job)
	}
}

// runJob executes one delivery attempt and applies the retry policy.
func (q *RedisQueue) runJob(ctx context.Context, log *zap.Logger, job Job) {
	handler, ok := q.registry.Lookup(job.Type)
	if !ok {
		log.Error("no handler for job type, parking job", zap.String("job_type", job.Type))
		job.LastError = "no handler registered"
		q.park(ctx, log, job)
		return
	}

	job.AttemptsMade++
	// Handlers log through logger.L(ctx), so the worker logger and job id
	// travel on the handler context.
	jobCtx, _ := logger.WithJobID(ctx, log, job.ID.String())
	err := q.invoke(jobCtx, handler, job)
	if err == nil {
		log.Debug("job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.Type),
			zap.Int("attempt", job.AttemptsMade),
		)
		return
	}

	job.LastError = err.Error()
	if job.Exhausted() {
		log.Error("job failed permanently",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", job.Type),
			zap.Int("attempts", job.AttemptsMade),
			zap.Error(err),
		)
		q.park(ctx, log, job)
		return
	}

	delay := job.NextDelay()
	log.Warn("job failed, scheduling retry",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", job.Type),
		zap.Int("attempt", job.AttemptsMade),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
	if err := q.schedule(ctx, job, time.Now().Add(delay)); err != nil {
		log.Error("failed to schedule retry", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

// invoke runs the handler with panic recovery so a bad job cannot take a
// worker down.
func (q *RedisQueue) invoke(ctx context.Context, handler HandlerFunc, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, job)
}

// schedule places a job in the delayed set to become pending at readyAt.
func (q *RedisQueue) schedule(ctx context.Context, job Job, readyAt time.Time) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.client.ZAdd(ctx, q.delayedKey(), redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: raw,
	}).Err()
}

// park moves a terminally failed job into the failed hash.
func (q *RedisQueue) park(ctx context.Context, log *zap.Logger, job Job) {
	raw, err := json.Marshal(job)
	if err != nil {
		log.Error("failed to marshal failed job", zap.Error(err))
		return
	}
	if err := q.client.HSet(ctx, q.failedKey(), job.ID.String(), raw).Err(); err != nil {
		log.Error("failed to park job", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

// promoteLoop moves due delayed jobs back into the pending list.
func (q *RedisQueue) promoteLoop(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PromoteTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := q.promoteDue(ctx); err != nil && ctx.Err() == nil {
				q.logger.Error("failed to promote delayed jobs", zap.Error(err))
			}
		}
	}
}

func (q *RedisQueue) promoteDue(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().UnixMilli())
	members, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 100,
	}).Result()
	if err != nil {
		return err
	}

	for _, member := range members {
		// ZREM before LPUSH so two promoters cannot double-deliver the same
		// member; a job lost between the two commands is re-enqueued by the
		// at-least-once contract of its producer.
		removed, err := q.client.ZRem(ctx, q.delayedKey(), member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.pendingKey(), member).Err(); err != nil {
			return err
		}
	}
	return nil
}

// FailedJobs returns terminally failed jobs awaiting operator action.
func (q *RedisQueue) FailedJobs(ctx context.Context) ([]Job, error) {
	entries, err := q.client.HGetAll(ctx, q.failedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list failed jobs: %w", err)
	}

	jobs := make([]Job, 0, len(entries))
	for _, raw := range entries {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// RetryFailed re-enqueues a parked job with a fresh attempt budget.
func (q *RedisQueue) RetryFailed(ctx context.Context, jobID uuid.UUID) error {
	raw, err := q.client.HGet(ctx, q.failedKey(), jobID.String()).Result()
	if err == redis.Nil {
		return fmt.Errorf("failed job %s not found", jobID)
	}
	if err != nil {
		return fmt.Errorf("failed to load failed job: %w", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return fmt.Errorf("failed to decode failed job: %w", err)
	}

	job.AttemptsMade = 0
	job.LastError = ""
	fresh, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, q.pendingKey(), fresh)
	pipe.HDel(ctx, q.failedKey(), jobID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}
	return nil
}

var (
	_ Enqueuer = (*RedisQueue)(nil)
	_ Registry = (*RedisQueue)(nil)
)
