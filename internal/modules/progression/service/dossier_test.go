package progression

import (
	"context"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type dossierFixture struct {
	candidate      *entity.Candidate
	participations []entity.Participation
	documents      []entity.Document
	payments       []entity.Payment
}

func (f *dossierFixture) FindByNupcan(_ context.Context, nupcan string) (*entity.Candidate, error) {
	if f.candidate != nil && f.candidate.Nupcan == nupcan {
		return f.candidate, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type participationsOf struct{ f *dossierFixture }

func (p participationsOf) FindByCandidate(context.Context, uuid.UUID) ([]entity.Participation, error) {
	return p.f.participations, nil
}

type documentsOf struct{ f *dossierFixture }

func (d documentsOf) FindByCandidate(context.Context, uuid.UUID) ([]entity.Document, error) {
	return d.f.documents, nil
}

type paymentsOf struct{ f *dossierFixture }

func (p paymentsOf) FindByCandidate(context.Context, uuid.UUID) ([]entity.Payment, error) {
	return p.f.payments, nil
}

func newDossierService(f *dossierFixture) DossierService {
	return NewDossierService(f, participationsOf{f}, documentsOf{f}, paymentsOf{f})
}

func TestDossier_FreeContestAfterFirstDocument(t *testing.T) {
	free := &entity.Contest{ID: uuid.New(), Label: "NGORI", Fee: decimal.Zero}
	f := &dossierFixture{
		candidate:      &entity.Candidate{ID: uuid.New(), Nupcan: "GC20250101-NGORI234"},
		participations: []entity.Participation{{ContestID: free.ID, Contest: free, Status: entity.ParticipationRegistered}},
	}
	svc := newDossierService(f)

	before, err := svc.GetByNupcan(context.Background(), f.candidate.Nupcan)
	require.NoError(t, err)
	assert.Equal(t, 33, before.Progression.Percentage)
	assert.Equal(t, StageDocuments, before.Progression.CurrentStage)

	f.documents = []entity.Document{{CandidateID: f.candidate.ID, Status: entity.StatusPending}}
	after, err := svc.GetByNupcan(context.Background(), f.candidate.Nupcan)
	require.NoError(t, err)
	assert.Equal(t, 100, after.Progression.Percentage)
	assert.Equal(t, StageComplete, after.Progression.CurrentStage)
	assert.True(t, after.Progression.FreeContest)
}

func TestDossier_UsesLatestApplication(t *testing.T) {
	paid := &entity.Contest{ID: uuid.New(), Fee: decimal.NewFromInt(20000)}
	other := &entity.Contest{ID: uuid.New(), Fee: decimal.NewFromInt(10000)}
	candidate := &entity.Candidate{ID: uuid.New(), Nupcan: "GC20250101-PAID2345"}
	f := &dossierFixture{
		candidate: candidate,
		participations: []entity.Participation{
			{ContestID: other.ID, Contest: other, CreatedAt: time.Now().Add(-time.Hour)},
			{ContestID: paid.ID, Contest: paid, CreatedAt: time.Now()},
		},
		documents: []entity.Document{{CandidateID: candidate.ID}},
		payments: []entity.Payment{
			{ContestID: &paid.ID, Status: entity.StatusValidated, Amount: decimal.NewFromInt(20000)},
		},
	}

	dossier, err := newDossierService(f).GetByNupcan(context.Background(), candidate.Nupcan)
	require.NoError(t, err)

	require.Len(t, dossier.Applications, 2)
	assert.Equal(t, 67, dossier.Applications[0].Progression.Percentage)
	assert.Nil(t, dossier.Applications[0].Payment)
	assert.Equal(t, 100, dossier.Applications[1].Progression.Percentage)
	assert.Equal(t, 100, dossier.Progression.Percentage)
}

func TestDossier_NotFound(t *testing.T) {
	_, err := newDossierService(&dossierFixture{}).GetByNupcan(context.Background(), "GC20250101-AAAAAAAA")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
