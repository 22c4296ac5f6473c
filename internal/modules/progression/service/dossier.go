package progression

import (
	"context"
	"errors"
	"strings"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// unknownFee stands in when no contest is attached: only a validated payment completes that stage.
var unknownFee = decimal.NewFromInt(1)

type CandidateFinder interface {
	FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
}

type ParticipationFinder interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
}

type DocumentLister interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Document, error)
}

type PaymentLister interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Payment, error)
}

// Application is one participation with the payment and progression that apply to it.
type Application struct {
	Participation entity.Participation `json:"participation"`
	Payment       *entity.Payment      `json:"payment,omitempty"`
	Progression   Result               `json:"progression"`
}

// Dossier is the candidate's full file, recomputed on every read.
type Dossier struct {
	Candidate    *entity.Candidate `json:"candidate"`
	Applications []Application     `json:"applications"`
	Documents    []entity.Document `json:"documents"`
	Payments     []entity.Payment  `json:"payments"`
	// Progression is the view of the most recent application, or of the bare
	// candidate when none exists.
	Progression Result `json:"progression"`
}

type DossierService interface {
	GetByNupcan(ctx context.Context, nupcan string) (*Dossier, error)
}

type dossierService struct {
	candidates     CandidateFinder
	participations ParticipationFinder
	documents      DocumentLister
	payments       PaymentLister
}

func NewDossierService(candidates CandidateFinder, participations ParticipationFinder, documents DocumentLister, payments PaymentLister) DossierService {
	return &dossierService{
		candidates:     candidates,
		participations: participations,
		documents:      documents,
		payments:       payments,
	}
}

func (s *dossierService) GetByNupcan(ctx context.Context, nupcan string) (*Dossier, error) {
	candidate, err := s.candidates.FindByNupcan(ctx, strings.TrimSpace(nupcan))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Dossier introuvable")
		}
		return nil, err
	}

	participations, err := s.participations.FindByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.FindByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.FindByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}

	dossier := &Dossier{
		Candidate:    candidate,
		Applications: make([]Application, 0, len(participations)),
		Documents:    documents,
		Payments:     payments,
	}

	var latest *Application
	for _, p := range participations {
		app := Application{Participation: p}
		fee := unknownFee
		if p.Contest != nil {
			fee = p.Contest.Fee
		}
		app.Payment = SelectPayment(payments, p.ContestID)
		app.Progression = Compute(candidate, documents, app.Payment, fee)
		dossier.Applications = append(dossier.Applications, app)

		if latest == nil || p.CreatedAt.After(latest.Participation.CreatedAt) {
			latest = &dossier.Applications[len(dossier.Applications)-1]
		}
	}

	if latest != nil {
		dossier.Progression = latest.Progression
	} else {
		dossier.Progression = Compute(candidate, documents, SelectPayment(payments, uuid.Nil), unknownFee)
	}

	return dossier, nil
}
