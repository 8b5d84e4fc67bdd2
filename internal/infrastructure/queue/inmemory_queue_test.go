package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryQueueDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("runs each pending job once on success", func(t *testing.T) {
		q := NewInMemoryQueue()
		calls := 0
		q.Register("A", func(ctx context.Context, job Job) error {
			calls++
			return nil
		})

		_, err := q.Enqueue(ctx, "A", nil)
		require.NoError(t, err)
		_, err = q.Enqueue(ctx, "A", nil)
		require.NoError(t, err)

		require.NoError(t, q.Drain(ctx))
		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, q.PendingCount())
		assert.Empty(t, q.FailedJobs())
	})

	t.Run("retries until the attempt limit, then parks", func(t *testing.T) {
		q := NewInMemoryQueue()
		attempts := 0
		q.Register("FLAKY", func(ctx context.Context, job Job) error {
			attempts++
			return errors.New("boom")
		})

		_, err := q.Enqueue(ctx, "FLAKY", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))

		assert.Equal(t, DefaultMaxAttempts, attempts)
		failed := q.FailedJobs()
		require.Len(t, failed, 1)
		assert.Equal(t, "boom", failed[0].LastError)
		assert.Equal(t, DefaultMaxAttempts, failed[0].AttemptsMade)
	})

	t.Run("a retry that recovers does not park", func(t *testing.T) {
		q := NewInMemoryQueue()
		attempts := 0
		q.Register("RECOVERS", func(ctx context.Context, job Job) error {
			attempts++
			if attempts < 2 {
				return errors.New("transient")
			}
			return nil
		})

		_, err := q.Enqueue(ctx, "RECOVERS", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))

		assert.Equal(t, 2, attempts)
		assert.Empty(t, q.FailedJobs())
	})

	t.Run("jobs enqueued by handlers are drained too", func(t *testing.T) {
		q := NewInMemoryQueue()
		var order []string
		q.Register("FIRST", func(ctx context.Context, job Job) error {
			order = append(order, "first")
			_, err := q.Enqueue(ctx, "SECOND", nil)
			return err
		})
		q.Register("SECOND", func(ctx context.Context, job Job) error {
			order = append(order, "second")
			return nil
		})

		_, err := q.Enqueue(ctx, "FIRST", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("unregistered job type is parked", func(t *testing.T) {
		q := NewInMemoryQueue()
		_, err := q.Enqueue(ctx, "UNKNOWN", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))

		failed := q.FailedJobs()
		require.Len(t, failed, 1)
		assert.Equal(t, "no handler registered", failed[0].LastError)
	})

	t.Run("handlers see the queue logger and job id in context", func(t *testing.T) {
		core, observed := observer.New(zapcore.InfoLevel)
		q := NewInMemoryQueue().WithLogger(zap.New(core))

		var seenJobID string
		q.Register("A", func(ctx context.Context, job Job) error {
			seenJobID = logger.GetJobID(ctx)
			logger.L(ctx).Info("handled")
			return nil
		})

		id, err := q.Enqueue(ctx, "A", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))

		assert.Equal(t, id.String(), seenJobID)
		entries := observed.All()
		require.Len(t, entries, 1)
		assert.Equal(t, id.String(), entries[0].ContextMap()["job_id"])
	})

	t.Run("queue level delivery policy applies to every enqueue", func(t *testing.T) {
		q := NewInMemoryQueue(WithMaxAttempts(2))
		attempts := 0
		q.Register("FLAKY", func(ctx context.Context, job Job) error {
			attempts++
			return errors.New("boom")
		})

		_, err := q.Enqueue(ctx, "FLAKY", nil)
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))

		assert.Equal(t, 2, attempts)
		require.Len(t, q.FailedJobs(), 1)
	})

	t.Run("per enqueue options override the queue policy", func(t *testing.T) {
		q := NewInMemoryQueue(WithMaxAttempts(2))
		attempts := 0
		q.Register("FLAKY", func(ctx context.Context, job Job) error {
			attempts++
			return errors.New("boom")
		})

		_, err := q.Enqueue(ctx, "FLAKY", nil, WithMaxAttempts(1))
		require.NoError(t, err)
		require.NoError(t, q.Drain(ctx))
		assert.Equal(t, 1, attempts)
	})

	t.Run("high priority jobs jump the line", func(t *testing.T) {
		q := NewInMemoryQueue()
		var order []string
		handler := func(name string) HandlerFunc {
			return func(ctx context.Context, job Job) error {
				order = append(order, name)
				return nil
			}
		}
		q.Register("NORMAL", handler("normal"))
		q.Register("URGENT", handler("urgent"))

		_, err := q.Enqueue(ctx, "NORMAL", nil)
		require.NoError(t, err)
		_, err = q.Enqueue(ctx, "URGENT", nil, WithPriority(PriorityHigh))
		require.NoError(t, err)

		require.NoError(t, q.Drain(ctx))
		assert.Equal(t, []string{"urgent", "normal"}, order)
	})
}
