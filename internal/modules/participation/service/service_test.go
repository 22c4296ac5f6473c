package participation

import (
	"context"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/participation/dto"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/numbering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type memoryParticipations struct {
	rows     map[uuid.UUID]*entity.Participation
	contests map[uuid.UUID]*entity.Contest
}

func (m *memoryParticipations) hydrate(p entity.Participation) *entity.Participation {
	p.Contest = m.contests[p.ContestID]
	return &p
}

func (m *memoryParticipations) Create(_ context.Context, p *entity.Participation) error {
	for _, existing := range m.rows {
		if existing.CandidateID == p.CandidateID && existing.ContestID == p.ContestID {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	copied := *p
	m.rows[p.ID] = &copied
	return nil
}

func (m *memoryParticipations) FindByID(_ context.Context, id uuid.UUID) (*entity.Participation, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.hydrate(*p), nil
}

func (m *memoryParticipations) FindByApplicationNumber(_ context.Context, number string) (*entity.Participation, error) {
	for _, p := range m.rows {
		if p.ApplicationNumber == number {
			return m.hydrate(*p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryParticipations) FindByCandidate(_ context.Context, candidateID uuid.UUID) ([]entity.Participation, error) {
	var out []entity.Participation
	for _, p := range m.rows {
		if p.CandidateID == candidateID {
			out = append(out, *m.hydrate(*p))
		}
	}
	return out, nil
}

func (m *memoryParticipations) FindByInstitution(context.Context, uuid.UUID) ([]entity.Participation, error) {
	return nil, nil
}

func (m *memoryParticipations) Updates(_ context.Context, id uuid.UUID, fields map[string]any) error {
	p, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(entity.ParticipationStatus); ok {
		p.Status = status
	}
	if track, ok := fields["track_id"].(uuid.UUID); ok {
		p.TrackID = &track
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memoryParticipations) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memoryParticipations) CountByStatus(context.Context, *uuid.UUID) (map[entity.ParticipationStatus]int64, error) {
	return nil, nil
}

type stubLedgers struct {
	candidates map[string]*entity.Candidate
	contests   map[uuid.UUID]*entity.Contest
	documents  []entity.Document
	payments   []entity.Payment
	notified   []*entity.Notification
}

func (s *stubLedgers) FindByNupcan(_ context.Context, nupcan string) (*entity.Candidate, error) {
	if c, ok := s.candidates[nupcan]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLedgers) FindContestByID(_ context.Context, id uuid.UUID) (*entity.Contest, error) {
	if c, ok := s.contests[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubDocuments struct{ *stubLedgers }

func (s stubDocuments) FindByCandidate(context.Context, uuid.UUID) ([]entity.Document, error) {
	return s.documents, nil
}

type stubPayments struct{ *stubLedgers }

func (s stubPayments) FindByCandidate(context.Context, uuid.UUID) ([]entity.Payment, error) {
	return s.payments, nil
}

func (s *stubLedgers) Notify(_ context.Context, n *entity.Notification) error {
	s.notified = append(s.notified, n)
	return nil
}

type ParticipationServiceSuite struct {
	suite.Suite
	repo      *memoryParticipations
	ledgers   *stubLedgers
	service   ParticipationService
	candidate *entity.Candidate
	paid      *entity.Contest
	free      *entity.Contest
	institute uuid.UUID
	super     *entity.Admin
}

func (s *ParticipationServiceSuite) SetupTest() {
	s.institute = uuid.New()
	s.paid = &entity.Contest{ID: uuid.New(), Label: "ENS", Fee: decimal.NewFromInt(20000), IsOpen: true, InstitutionID: s.institute}
	s.free = &entity.Contest{ID: uuid.New(), Label: "NGORI", Fee: decimal.Zero, IsOpen: true, InstitutionID: s.institute}
	contests := map[uuid.UUID]*entity.Contest{s.paid.ID: s.paid, s.free.ID: s.free}

	s.candidate = &entity.Candidate{ID: uuid.New(), Nupcan: "GC20250101-ABCDEFGH", Email: "c@example.com"}
	s.repo = &memoryParticipations{rows: map[uuid.UUID]*entity.Participation{}, contests: contests}
	s.ledgers = &stubLedgers{
		candidates: map[string]*entity.Candidate{s.candidate.Nupcan: s.candidate},
		contests:   contests,
	}
	s.service = NewParticipationService(s.repo, s.ledgers, s.ledgers, stubDocuments{s.ledgers}, stubPayments{s.ledgers}, s.ledgers)
	s.super = &entity.Admin{ID: uuid.New(), Role: entity.RoleSuperAdmin, Active: true}
}

func (s *ParticipationServiceSuite) create(contest *entity.Contest) *entity.Participation {
	p, err := s.service.Create(context.Background(), dto.CreateParticipationRequest{Nupcan: s.candidate.Nupcan, ContestID: contest.ID})
	s.Require().NoError(err)
	return p
}

func (s *ParticipationServiceSuite) TestCreate_InitialStatusAndNumber() {
	p := s.create(s.paid)

	s.Equal(entity.ParticipationRegistered, p.Status)
	s.Regexp(numbering.ApplicationNumberPattern, p.ApplicationNumber)
}

func (s *ParticipationServiceSuite) TestCreate_DuplicatePairConflicts() {
	s.create(s.paid)

	_, err := s.service.Create(context.Background(), dto.CreateParticipationRequest{Nupcan: s.candidate.Nupcan, ContestID: s.paid.ID})
	s.Require().Error(err)
	s.ErrorIs(err, apperror.ErrConflict)
}

func (s *ParticipationServiceSuite) TestCreate_ClosedContest() {
	s.paid.IsOpen = false

	_, err := s.service.Create(context.Background(), dto.CreateParticipationRequest{Nupcan: s.candidate.Nupcan, ContestID: s.paid.ID})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *ParticipationServiceSuite) TestFindByApplicationNumber_NotFound() {
	_, err := s.service.FindByApplicationNumber(context.Background(), "PART_0_missing")
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ParticipationServiceSuite) TestSyncStatus_FollowsProgression() {
	ctx := context.Background()
	p := s.create(s.paid)

	s.ledgers.documents = []entity.Document{{Name: "Diplôme"}}
	s.Require().NoError(s.service.SyncStatus(ctx, s.candidate.ID))
	got, _ := s.repo.FindByID(ctx, p.ID)
	s.Equal(entity.ParticipationDocsSubmitted, got.Status)

	s.ledgers.payments = []entity.Payment{{ContestID: &s.paid.ID, Status: entity.StatusValidated}}
	s.Require().NoError(s.service.SyncStatus(ctx, s.candidate.ID))
	got, _ = s.repo.FindByID(ctx, p.ID)
	s.Equal(entity.ParticipationPaymentDone, got.Status)

	// removing evidence never moves the status backwards
	s.ledgers.documents = nil
	s.ledgers.payments = nil
	s.Require().NoError(s.service.SyncStatus(ctx, s.candidate.ID))
	got, _ = s.repo.FindByID(ctx, p.ID)
	s.Equal(entity.ParticipationPaymentDone, got.Status)
}

func (s *ParticipationServiceSuite) TestSyncStatus_FreeContestSkipsPayment() {
	ctx := context.Background()
	p := s.create(s.free)

	s.ledgers.documents = []entity.Document{{Name: "Acte"}}
	s.Require().NoError(s.service.SyncStatus(ctx, s.candidate.ID))

	got, _ := s.repo.FindByID(ctx, p.ID)
	s.Equal(entity.ParticipationPaymentDone, got.Status)
}

func (s *ParticipationServiceSuite) TestUpdate_RejectsOutOfOrderStatus() {
	p := s.create(s.paid)
	status := string(entity.ParticipationPaymentDone)

	_, err := s.service.Update(context.Background(), s.super, p.ID, dto.UpdateParticipationRequest{Status: &status})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *ParticipationServiceSuite) TestUpdate_LegalStepAndTrack() {
	p := s.create(s.paid)
	status := string(entity.ParticipationDocsSubmitted)
	track := uuid.New()

	updated, err := s.service.Update(context.Background(), s.super, p.ID, dto.UpdateParticipationRequest{Status: &status, TrackID: &track})
	s.Require().NoError(err)
	s.Equal(entity.ParticipationDocsSubmitted, updated.Status)
	s.Equal(track, *updated.TrackID)
}

func (s *ParticipationServiceSuite) TestDecide_RequiresPaymentStage() {
	ctx := context.Background()
	p := s.create(s.paid)

	_, err := s.service.Decide(ctx, s.super, p.ID, dto.DecisionRequest{Status: "valide"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	s.repo.rows[p.ID].Status = entity.ParticipationPaymentDone
	s.repo.rows[p.ID].Candidate = s.candidate
	decided, err := s.service.Decide(ctx, s.super, p.ID, dto.DecisionRequest{Status: "rejete", Reason: "<b>Dossier</b> incomplet"})
	s.Require().NoError(err)
	s.Equal(entity.ParticipationRejected, decided.Status)
}

func (s *ParticipationServiceSuite) TestDecide_OtherInstitutionForbidden() {
	p := s.create(s.paid)
	other := uuid.New()
	scoped := &entity.Admin{Role: entity.RoleInstitutionAdmin, InstitutionID: &other, Active: true}

	_, err := s.service.Decide(context.Background(), scoped, p.ID, dto.DecisionRequest{Status: "valide"})
	s.ErrorIs(err, apperror.ErrForbidden)
}

func (s *ParticipationServiceSuite) TestDelete_RestrictedByValidatedPayment() {
	p := s.create(s.paid)
	s.ledgers.payments = []entity.Payment{{ContestID: &s.paid.ID, Status: entity.StatusValidated}}

	err := s.service.Delete(context.Background(), s.super, p.ID)
	s.ErrorIs(err, apperror.ErrConflict)

	s.ledgers.payments = nil
	s.NoError(s.service.Delete(context.Background(), s.super, p.ID))
	s.Empty(s.repo.rows)
}

func TestParticipationServiceSuite(t *testing.T) {
	suite.Run(t, new(ParticipationServiceSuite))
}

func TestForwardStep(t *testing.T) {
	next, ok := forwardStep(entity.ParticipationRegistered)
	require.True(t, ok)
	assert.Equal(t, entity.ParticipationDocsSubmitted, next)

	_, ok = forwardStep(entity.ParticipationPaymentDone)
	assert.False(t, ok)
}
