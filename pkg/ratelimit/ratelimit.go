package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, subject)
}

// CheckAndSet reports whether the action is allowed and locks it for limit.
// Without Redis every call is allowed.
func CheckAndSet(ctx context.Context, rdb *redis.Client, subject, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func TTL(ctx context.Context, rdb *redis.Client, subject, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, action)).Result()
}
