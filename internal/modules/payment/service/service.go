package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/payment/dto"
	"gabconcours.ga/backend/internal/modules/payment/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CandidateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
	FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
}

type ParticipationFinder interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
}

type StatusSyncer interface {
	SyncStatus(ctx context.Context, candidateID uuid.UUID) error
}

type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

type PaymentService interface {
	Create(ctx context.Context, req dto.CreatePaymentRequest) (*entity.Payment, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	GetByNupcan(ctx context.Context, nupcan string) ([]entity.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]entity.Payment, error)
	Validate(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*entity.Payment, error)
}

type paymentService struct {
	repo           repository.PaymentRepository
	candidates     CandidateFinder
	participations ParticipationFinder
	syncer         StatusSyncer
	notifier       Notifier
}

func NewPaymentService(
	repo repository.PaymentRepository,
	candidates CandidateFinder,
	participations ParticipationFinder,
	syncer StatusSyncer,
	notifier Notifier,
) PaymentService {
	return &paymentService{
		repo:           repo,
		candidates:     candidates,
		participations: participations,
		syncer:         syncer,
		notifier:       notifier,
	}
}

// Create records a payment attempt. Resolving the candidate is best effort: an unknown
// NUPCAN still produces a payment row carrying the NUPCAN only.
func (s *paymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*entity.Payment, error) {
	nupcan := strings.TrimSpace(req.Nupcan)
	var details []string
	if nupcan == "" {
		details = append(details, "NUPCAN est obligatoire")
	}
	if !req.Amount.IsPositive() {
		details = append(details, "Le montant doit être supérieur à 0")
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Données de paiement invalides", details...)
	}

	payment := &entity.Payment{
		Nupcan:    nupcan,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: validator.SanitizeText(req.Reference),
		Status:    entity.StatusPending,
	}

	requestedContest, err := parseOptionalID(req.ContestID)
	if err != nil {
		return nil, apperror.Validation("Concours invalide")
	}

	contest, err := s.resolve(ctx, payment, requestedContest)
	if err != nil {
		return nil, err
	}
	if contest != nil && contest.IsFree() {
		return nil, apperror.Validation("Concours gratuit", "Ce concours ne requiert aucun paiement")
	}
	if payment.ContestID == nil {
		payment.ContestID = requestedContest
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if payment.CandidateID != nil {
		if err := s.syncer.SyncStatus(ctx, *payment.CandidateID); err != nil {
			log.Printf("Failed to sync participation status for %s: %v", nupcan, err)
		}
	}

	return payment, nil
}

// resolve links the payment to its candidate and contest when they can be found.
// The requested contest wins; otherwise the latest participation is used.
func (s *paymentService) resolve(ctx context.Context, payment *entity.Payment, requested *uuid.UUID) (*entity.Contest, error) {
	candidate, err := s.candidates.FindByNupcan(ctx, payment.Nupcan)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Payment for %s stored without candidate link: %v", payment.Nupcan, err)
		}
		return nil, nil
	}
	payment.CandidateID = &candidate.ID

	participations, err := s.participations.FindByCandidate(ctx, candidate.ID)
	if err != nil {
		log.Printf("Payment for %s stored without contest link: %v", payment.Nupcan, err)
		return nil, nil
	}

	var chosen *entity.Participation
	for i := range participations {
		p := &participations[i]
		if requested != nil {
			if p.ContestID == *requested {
				chosen = p
				break
			}
			continue
		}
		if chosen == nil || p.CreatedAt.After(chosen.CreatedAt) {
			chosen = p
		}
	}
	if chosen == nil {
		if requested != nil {
			return nil, apperror.Validation("Concours invalide", "Le candidat n'est pas inscrit à ce concours")
		}
		return nil, nil
	}

	payment.ContestID = &chosen.ContestID
	return chosen.Contest, nil
}

func (s *paymentService) Get(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Paiement introuvable")
		}
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) GetByNupcan(ctx context.Context, nupcan string) ([]entity.Payment, error) {
	nupcan = strings.TrimSpace(nupcan)
	if nupcan == "" {
		return nil, apperror.Validation("NUPCAN requis")
	}
	return s.repo.FindByNupcan(ctx, nupcan)
}

func (s *paymentService) List(ctx context.Context, filter repository.PaymentFilter) ([]entity.Payment, error) {
	return s.repo.FindAll(ctx, filter)
}

// Validate confirms a payment. A validated payment is never reverted.
func (s *paymentService) Validate(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == entity.StatusValidated {
		return payment, nil
	}

	now := time.Now()
	if err := s.repo.Updates(ctx, id, map[string]any{
		"status":           entity.StatusValidated,
		"validated_at":     now,
		"rejection_reason": nil,
	}); err != nil {
		return nil, err
	}
	payment.Status = entity.StatusValidated
	payment.ValidatedAt = &now
	payment.RejectionReason = nil

	if payment.CandidateID != nil {
		if err := s.syncer.SyncStatus(ctx, *payment.CandidateID); err != nil {
			log.Printf("Failed to sync participation status for %s: %v", payment.Nupcan, err)
		}
	}
	s.notify(ctx, payment)

	return payment, nil
}

func (s *paymentService) Reject(ctx context.Context, id uuid.UUID, reason string) (*entity.Payment, error) {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != entity.StatusPending {
		return nil, apperror.Validation("Seul un paiement en attente peut être rejeté")
	}

	cleaned := validator.SanitizeOptional(reason)
	if cleaned == nil {
		return nil, apperror.Validation("Le motif du rejet est obligatoire")
	}

	if err := s.repo.Updates(ctx, id, map[string]any{
		"status":           entity.StatusRejected,
		"rejection_reason": *cleaned,
	}); err != nil {
		return nil, err
	}
	payment.Status = entity.StatusRejected
	payment.RejectionReason = cleaned

	s.notify(ctx, payment)
	return payment, nil
}

func (s *paymentService) notify(ctx context.Context, payment *entity.Payment) {
	if s.notifier == nil || payment.CandidateID == nil {
		return
	}

	candidate, err := s.candidates.FindByID(ctx, *payment.CandidateID)
	if err != nil {
		log.Printf("Failed to load candidate for payment %s notification: %v", payment.ID, err)
		return
	}

	n := &entity.Notification{
		CandidateID: candidate.ID,
		Nupcan:      candidate.Nupcan,
		Email:       candidate.Email,
		Recipient:   candidate.FullName(),
		Reason:      payment.RejectionReason,
	}
	amount := payment.Amount.StringFixed(0)
	if payment.Status == entity.StatusValidated {
		n.Type = entity.NotificationPaymentValidated
		n.Title = "Paiement validé"
		n.Message = fmt.Sprintf("Votre paiement de %s FCFA (réf. %s) a été validé.", amount, payment.Reference)
	} else {
		n.Type = entity.NotificationPaymentRejected
		n.Title = "Paiement rejeté"
		n.Message = fmt.Sprintf("Votre paiement de %s FCFA (réf. %s) a été rejeté.", amount, payment.Reference)
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("Failed to queue notification for payment %s: %v", payment.ID, err)
	}
}

func parseOptionalID(value string) (*uuid.UUID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
