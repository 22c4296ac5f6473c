//go:build integration

package seed

import (
	"context"
	"testing"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/testutil/containers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedProvincesIsIdempotent(t *testing.T) {
	db := containers.NewPostgres(t)
	ctx := context.Background()

	created, err := SeedProvinces(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, len(Provinces), created)

	created, err = SeedProvinces(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.Model(&entity.Province{}).Count(&count).Error)
	assert.EqualValues(t, 9, count)
}

func TestInstitutionReturnsExisting(t *testing.T) {
	db := containers.NewPostgres(t)
	ctx := context.Background()

	first, created, err := Institution(ctx, db, "Université Omar Bongo", "uob")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "UOB", first.Acronym)

	again, created, err := Institution(ctx, db, "Autre nom", "UOB")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	_, _, err = Institution(ctx, db, "", "X")
	assert.Error(t, err)
}

func TestSuperAdmin(t *testing.T) {
	db := containers.NewPostgres(t)
	ctx := context.Background()

	admin, password, err := SuperAdmin(ctx, db, SuperAdminInput{Email: " Root@GabConcours.ga "})
	require.NoError(t, err)
	assert.Equal(t, "root@gabconcours.ga", admin.Email)
	assert.Equal(t, entity.RoleSuperAdmin, admin.Role)
	assert.Len(t, password, 12)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)))

	_, _, err = SuperAdmin(ctx, db, SuperAdminInput{Email: "root@gabconcours.ga"})
	assert.ErrorIs(t, err, ErrAdminExists)

	// A super admin already exists, so the development seed is a no-op.
	require.NoError(t, Development(ctx, db, "dev@gabconcours.ga"))
	var count int64
	require.NoError(t, db.Model(&entity.Admin{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
