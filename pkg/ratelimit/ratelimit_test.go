package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithoutRedisEverythingIsAllowed(t *testing.T) {
	ctx := context.Background()

	allowed, err := CheckAndSet(ctx, nil, "admin@gabconcours.ga", "login", time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl, err := TTL(ctx, nil, "admin@gabconcours.ga", "login")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "rate_limit:login:admin@gabconcours.ga", key("admin@gabconcours.ga", "login"))
}
