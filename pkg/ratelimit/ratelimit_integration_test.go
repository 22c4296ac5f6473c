//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"gabconcours.ga/backend/pkg/testutil/containers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndSetLocksForTheWindow(t *testing.T) {
	rdb := containers.NewRedis(t)
	ctx := context.Background()

	allowed, err := CheckAndSet(ctx, rdb, "admin@gabconcours.ga", "login", time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckAndSet(ctx, rdb, "admin@gabconcours.ga", "login", time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	ttl, err := TTL(ctx, rdb, "admin@gabconcours.ga", "login")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	// Another subject is independent.
	allowed, err = CheckAndSet(ctx, rdb, "other@gabconcours.ga", "login", time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
