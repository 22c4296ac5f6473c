//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/testutil/containers"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedContest(t *testing.T, db *gorm.DB) *entity.Contest {
	t.Helper()
	institution := &entity.Institution{Name: "École Normale Supérieure", Acronym: "ENS-" + uuid.NewString()[:4]}
	require.NoError(t, db.Create(institution).Error)

	contest := &entity.Contest{Label: "Concours ENS", Fee: decimal.NewFromInt(15000), IsOpen: true, InstitutionID: institution.ID}
	require.NoError(t, db.Omit("Institution").Create(contest).Error)
	return contest
}

func newCandidate(nupcan string) *entity.Candidate {
	return &entity.Candidate{
		Nupcan:    nupcan,
		LastName:  "Mba",
		FirstName: "Paul",
		Email:     "paul@example.com",
		BirthDate: time.Date(2004, 2, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newParticipation(contestID uuid.UUID, number string) *entity.Participation {
	return &entity.Participation{ContestID: contestID, ApplicationNumber: number, Status: entity.ParticipationRegistered}
}

func TestCandidateRepositoryConstraints(t *testing.T) {
	db := containers.NewPostgres(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()
	contest := seedContest(t, db)

	candidate := newCandidate("GC20250101-ABCDEFGH")
	require.NoError(t, repo.CreateWithParticipation(ctx, candidate, newParticipation(contest.ID, "PART_1735689600000_abcdefghi")))

	exists, err := repo.ExistsNupcan(ctx, candidate.Nupcan)
	require.NoError(t, err)
	assert.True(t, exists)

	// Same NUPCAN: the whole registration is rolled back.
	err = repo.CreateWithParticipation(ctx, newCandidate(candidate.Nupcan), newParticipation(contest.ID, "PART_1735689600001_abcdefghi"))
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	var participations int64
	require.NoError(t, db.Model(&entity.Participation{}).Count(&participations).Error)
	assert.Equal(t, int64(1), participations)

	// Second participation for the same candidate and contest.
	dup := newParticipation(contest.ID, "PART_1735689600002_abcdefghi")
	dup.CandidateID = candidate.ID
	err = db.Omit("Candidate", "Contest", "Track").Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// A candidate with a document cannot be hard deleted.
	doc := &entity.Document{CandidateID: candidate.ID, Nupcan: candidate.Nupcan, Name: "acte.pdf", Type: "acte", StoredName: "document-1-000000001.pdf", Size: 10}
	require.NoError(t, db.Omit("Candidate").Create(doc).Error)
	err = db.Delete(&entity.Candidate{}, "id = ?", candidate.ID).Error
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestFindAllScopedByInstitution(t *testing.T) {
	db := containers.NewPostgres(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()

	ens := seedContest(t, db)
	ustm := seedContest(t, db)

	require.NoError(t, repo.CreateWithParticipation(ctx, newCandidate("GC20250101-AAAAAAAA"), newParticipation(ens.ID, "PART_1735689600000_aaaaaaaaa")))
	require.NoError(t, repo.CreateWithParticipation(ctx, newCandidate("GC20250101-BBBBBBBB"), newParticipation(ustm.ID, "PART_1735689600000_bbbbbbbbb")))

	candidates, total, err := repo.FindAll(ctx, CandidateFilter{InstitutionID: &ens.InstitutionID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, candidates, 1)
	assert.Equal(t, "GC20250101-AAAAAAAA", candidates[0].Nupcan)

	count, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
