//go:build integration

package stat

import (
	"context"
	"testing"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/testutil/containers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview_CachedInRedis(t *testing.T) {
	rdb := containers.NewRedis(t)
	c := &counters{}
	svc := NewStatService(c, c, c, documentCounts{c}, participationCounts{c}, rdb)
	admin := &entity.Admin{Role: entity.RoleSuperAdmin}

	first, err := svc.Overview(context.Background(), admin)
	require.NoError(t, err)
	calls := c.calls

	second, err := svc.Overview(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, calls, c.calls)
	assert.Equal(t, first.Candidates, second.Candidates)

	ttl, err := rdb.TTL(context.Background(), cacheKey(nil)).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
