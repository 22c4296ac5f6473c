package payment

import (
	"context"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/payment/dto"
	"gabconcours.ga/backend/internal/modules/payment/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryPayments struct {
	rows map[uuid.UUID]*entity.Payment
}

func (m *memoryPayments) Create(_ context.Context, p *entity.Payment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	copied := *p
	m.rows[p.ID] = &copied
	return nil
}

func (m *memoryPayments) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	if p, ok := m.rows[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryPayments) FindByNupcan(_ context.Context, nupcan string) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range m.rows {
		if p.Nupcan == nupcan {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryPayments) FindByCandidate(_ context.Context, candidateID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range m.rows {
		if p.CandidateID != nil && *p.CandidateID == candidateID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryPayments) FindAll(context.Context, repository.PaymentFilter) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range m.rows {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memoryPayments) Updates(_ context.Context, id uuid.UUID, fields map[string]any) error {
	p, ok := m.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(entity.ValidationStatus); ok {
		p.Status = status
	}
	if reason, ok := fields["rejection_reason"].(string); ok {
		p.RejectionReason = &reason
	}
	if at, ok := fields["validated_at"].(time.Time); ok {
		p.ValidatedAt = &at
	}
	return nil
}

func (m *memoryPayments) Totals(context.Context, *uuid.UUID) (*repository.PaymentTotals, error) {
	return &repository.PaymentTotals{Count: int64(len(m.rows))}, nil
}

type stubCandidates struct{ candidate *entity.Candidate }

func (s stubCandidates) FindByID(context.Context, uuid.UUID) (*entity.Candidate, error) {
	return s.candidate, nil
}

func (s stubCandidates) FindByNupcan(_ context.Context, nupcan string) (*entity.Candidate, error) {
	if nupcan == s.candidate.Nupcan {
		return s.candidate, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubParticipations map[uuid.UUID][]entity.Participation

func (s stubParticipations) FindByCandidate(_ context.Context, candidateID uuid.UUID) ([]entity.Participation, error) {
	return s[candidateID], nil
}

type recordingSyncer struct{ candidates []uuid.UUID }

func (r *recordingSyncer) SyncStatus(_ context.Context, candidateID uuid.UUID) error {
	r.candidates = append(r.candidates, candidateID)
	return nil
}

type recordingNotifier struct{ sent []*entity.Notification }

func (r *recordingNotifier) Notify(_ context.Context, n *entity.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type fixture struct {
	repo      *memoryPayments
	syncer    *recordingSyncer
	notifier  *recordingNotifier
	candidate *entity.Candidate
	paid      *entity.Contest
	free      *entity.Contest
	service   PaymentService
}

func newFixture(freeLatest bool) *fixture {
	f := &fixture{
		repo:      &memoryPayments{rows: map[uuid.UUID]*entity.Payment{}},
		syncer:    &recordingSyncer{},
		notifier:  &recordingNotifier{},
		candidate: &entity.Candidate{ID: uuid.New(), Nupcan: "GC20250101-ABCDEFGH", Email: "c@example.com"},
		paid:      &entity.Contest{ID: uuid.New(), Label: "ENS", Fee: decimal.NewFromInt(15000)},
		free:      &entity.Contest{ID: uuid.New(), Label: "NGORI", Fee: decimal.Zero},
	}

	older := entity.Participation{ContestID: f.paid.ID, Contest: f.paid, CreatedAt: time.Now().Add(-time.Hour)}
	newer := entity.Participation{ContestID: f.free.ID, Contest: f.free, CreatedAt: time.Now()}
	if !freeLatest {
		older, newer = entity.Participation{ContestID: f.free.ID, Contest: f.free, CreatedAt: time.Now().Add(-time.Hour)},
			entity.Participation{ContestID: f.paid.ID, Contest: f.paid, CreatedAt: time.Now()}
	}

	f.service = NewPaymentService(
		f.repo,
		stubCandidates{f.candidate},
		stubParticipations{f.candidate.ID: {older, newer}},
		f.syncer,
		f.notifier,
	)
	return f
}

func request(nupcan string, amount int64) dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{Nupcan: nupcan, Amount: decimal.NewFromInt(amount), Method: entity.PaymentAirtelMoney, Reference: "AM-001"}
}

func TestCreate_RejectsNonPositiveAmountWithoutWriting(t *testing.T) {
	f := newFixture(false)

	for _, amount := range []int64{0, -500} {
		_, err := f.service.Create(context.Background(), request(f.candidate.Nupcan, amount))
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	}
	_, err := f.service.Create(context.Background(), request("  ", 1000))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	assert.Empty(t, f.repo.rows)
	assert.Empty(t, f.syncer.candidates)
}

func TestCreate_UnknownNupcanStillStored(t *testing.T) {
	f := newFixture(false)

	created, err := f.service.Create(context.Background(), request("GC20990101-ZZZZZZZZ", 15000))
	require.NoError(t, err)

	assert.Nil(t, created.CandidateID)
	assert.Nil(t, created.ContestID)
	assert.Equal(t, entity.StatusPending, created.Status)
	assert.Len(t, f.repo.rows, 1)
	assert.Empty(t, f.syncer.candidates)
}

func TestCreate_LinksLatestParticipation(t *testing.T) {
	f := newFixture(false)

	created, err := f.service.Create(context.Background(), request(f.candidate.Nupcan, 15000))
	require.NoError(t, err)

	require.NotNil(t, created.CandidateID)
	assert.Equal(t, f.candidate.ID, *created.CandidateID)
	require.NotNil(t, created.ContestID)
	assert.Equal(t, f.paid.ID, *created.ContestID)
	assert.Equal(t, []uuid.UUID{f.candidate.ID}, f.syncer.candidates)
}

func TestCreate_FreeContestRejected(t *testing.T) {
	f := newFixture(true)

	_, err := f.service.Create(context.Background(), request(f.candidate.Nupcan, 15000))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	req := request(f.candidate.Nupcan, 15000)
	req.ContestID = f.paid.ID.String()
	created, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, f.paid.ID, *created.ContestID)
}

func TestValidateIsOneWay(t *testing.T) {
	f := newFixture(false)
	created, err := f.service.Create(context.Background(), request(f.candidate.Nupcan, 15000))
	require.NoError(t, err)

	validated, err := f.service.Validate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusValidated, validated.Status)
	assert.NotNil(t, validated.ValidatedAt)

	_, err = f.service.Reject(context.Background(), created.ID, "trop tard")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	again, err := f.service.Validate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusValidated, again.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.NotificationPaymentValidated, f.notifier.sent[0].Type)
}

func TestReject(t *testing.T) {
	f := newFixture(false)
	created, err := f.service.Create(context.Background(), request(f.candidate.Nupcan, 15000))
	require.NoError(t, err)

	_, err = f.service.Reject(context.Background(), created.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	rejected, err := f.service.Reject(context.Background(), created.ID, "Référence <b>inconnue</b>")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Référence inconnue", *rejected.RejectionReason)

	stored, err := f.service.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, stored.Status)
	assert.Equal(t, "Référence inconnue", *stored.RejectionReason)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.NotificationPaymentRejected, f.notifier.sent[0].Type)
}
