package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	OutboxKey       = "notifications:outbox"
	sentKeyPrefix   = "notifications:sent:"
	channelPrefix   = "candidate_notifications:"
	claimTTL        = 7 * 24 * time.Hour
	memoryQueueSize = 256

	// RequeueInterval is how often unsent rows are pushed back onto the outbox.
	RequeueInterval = 5 * time.Minute
	requeueAfter    = 10 * time.Minute
	// requeueWindow stays below claimTTL so a claimed row is never sent twice.
	requeueWindow = 24 * time.Hour
	requeueBatch  = 500
)

// Queue carries notification ids from the request path to the dispatcher.
type Queue interface {
	Enqueue(ctx context.Context, id uuid.UUID) error
	// Dequeue blocks up to timeout. ok is false when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (id uuid.UUID, ok bool, err error)
}

func CandidateChannel(nupcan string) string {
	return channelPrefix + nupcan
}

type redisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue uses a Redis list as a durable outbox (LPUSH / BRPOP).
func NewRedisQueue(rdb *redis.Client) Queue {
	return &redisQueue{rdb: rdb}
}

func (q *redisQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	if err := q.rdb.LPush(ctx, OutboxKey, id.String()).Err(); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

func (q *redisQueue) Dequeue(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
	res, err := q.rdb.BRPop(ctx, timeout, OutboxKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	// res is [key, value]
	id, err := uuid.Parse(res[1])
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("invalid notification id in outbox: %w", err)
	}
	return id, true, nil
}

type memoryQueue struct {
	ch chan uuid.UUID
}

// NewMemoryQueue is the outbox used when Redis is not configured. Pending ids are lost on restart.
func NewMemoryQueue() Queue {
	return &memoryQueue{ch: make(chan uuid.UUID, memoryQueueSize)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, id uuid.UUID) error {
	select {
	case q.ch <- id:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("notification queue is full")
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (uuid.UUID, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case id := <-q.ch:
		return id, true, nil
	case <-timer.C:
		return uuid.Nil, false, nil
	case <-ctx.Done():
		return uuid.Nil, false, ctx.Err()
	}
}
