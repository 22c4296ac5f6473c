package participation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/participation/dto"
	"gabconcours.ga/backend/internal/modules/participation/repository"
	progression "gabconcours.ga/backend/internal/modules/progression/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/numbering"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CandidateFinder interface {
	FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
}

type ContestFinder interface {
	FindContestByID(ctx context.Context, id uuid.UUID) (*entity.Contest, error)
}

type DocumentLister interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Document, error)
}

type PaymentLister interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Payment, error)
}

type Notifier interface {
	Notify(ctx context.Context, notification *entity.Notification) error
}

type ParticipationService interface {
	NewParticipation(candidateID, contestID uuid.UUID, trackID *uuid.UUID) *entity.Participation
	Create(ctx context.Context, req dto.CreateParticipationRequest) (*entity.Participation, error)
	FindByApplicationNumber(ctx context.Context, number string) (*entity.Participation, error)
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
	FindByNupcan(ctx context.Context, nupcan string) ([]entity.Participation, error)
	Update(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.UpdateParticipationRequest) (*entity.Participation, error)
	Decide(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.DecisionRequest) (*entity.Participation, error)
	Delete(ctx context.Context, admin *entity.Admin, id uuid.UUID) error
	SyncStatus(ctx context.Context, candidateID uuid.UUID) error
}

type participationService struct {
	repo       repository.ParticipationRepository
	candidates CandidateFinder
	contests   ContestFinder
	documents  DocumentLister
	payments   PaymentLister
	notifier   Notifier
}

func NewParticipationService(
	repo repository.ParticipationRepository,
	candidates CandidateFinder,
	contests ContestFinder,
	documents DocumentLister,
	payments PaymentLister,
	notifier Notifier,
) ParticipationService {
	return &participationService{
		repo:       repo,
		candidates: candidates,
		contests:   contests,
		documents:  documents,
		payments:   payments,
		notifier:   notifier,
	}
}

// NewParticipation builds an unsaved participation in its initial state.
func (s *participationService) NewParticipation(candidateID, contestID uuid.UUID, trackID *uuid.UUID) *entity.Participation {
	return &entity.Participation{
		CandidateID:       candidateID,
		ContestID:         contestID,
		TrackID:           trackID,
		ApplicationNumber: numbering.ApplicationNumber(time.Now()),
		Status:            entity.ParticipationRegistered,
	}
}

// Create registers an existing candidate to another contest.
func (s *participationService) Create(ctx context.Context, req dto.CreateParticipationRequest) (*entity.Participation, error) {
	candidate, err := s.candidates.FindByNupcan(ctx, req.Nupcan)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Candidat introuvable")
		}
		return nil, err
	}

	contest, err := s.contests.FindContestByID(ctx, req.ContestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Concours introuvable")
		}
		return nil, err
	}
	if !contest.IsOpen {
		return nil, apperror.Validation("Concours fermé", "Les inscriptions à ce concours sont closes")
	}

	participation := s.NewParticipation(candidate.ID, contest.ID, req.TrackID)
	if err := s.repo.Create(ctx, participation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Ce candidat est déjà inscrit à ce concours")
		}
		return nil, fmt.Errorf("failed to create participation: %w", err)
	}

	if err := s.SyncStatus(ctx, candidate.ID); err != nil {
		log.Printf("Failed to sync participation status for candidate %s: %v", candidate.ID, err)
	}

	return s.repo.FindByID(ctx, participation.ID)
}

func (s *participationService) FindByApplicationNumber(ctx context.Context, number string) (*entity.Participation, error) {
	participation, err := s.repo.FindByApplicationNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Participation introuvable")
		}
		return nil, err
	}
	return participation, nil
}

func (s *participationService) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error) {
	return s.repo.FindByCandidate(ctx, candidateID)
}

func (s *participationService) FindByNupcan(ctx context.Context, nupcan string) ([]entity.Participation, error) {
	candidate, err := s.candidates.FindByNupcan(ctx, nupcan)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Candidat introuvable")
		}
		return nil, err
	}
	return s.repo.FindByCandidate(ctx, candidate.ID)
}

func (s *participationService) loadScoped(ctx context.Context, admin *entity.Admin, id uuid.UUID) (*entity.Participation, error) {
	participation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Participation introuvable")
		}
		return nil, err
	}
	if participation.Contest == nil || !admin.CanAccessInstitution(participation.Contest.InstitutionID) {
		return nil, apperror.Forbidden("Cette candidature n'appartient pas à votre établissement")
	}
	return participation, nil
}

// Update merges the given fields. A status change must be a legal single step.
func (s *participationService) Update(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.UpdateParticipationRequest) (*entity.Participation, error) {
	participation, err := s.loadScoped(ctx, admin, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{"updated_at": time.Now()}
	if req.TrackID != nil {
		fields["track_id"] = *req.TrackID
	}
	if req.Status != nil {
		next := entity.ParticipationStatus(*req.Status)
		if next != participation.Status {
			if !participation.Status.CanTransitionTo(next) {
				return nil, invalidTransition(participation.Status, next)
			}
			if next.Terminal() {
				return nil, apperror.Validation("Transition invalide", "Utilisez la décision pour valider ou rejeter une candidature")
			}
			fields["status"] = next
		}
	}

	if err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Decide sets a terminal status. Only a participation whose payment stage is complete can be decided.
func (s *participationService) Decide(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.DecisionRequest) (*entity.Participation, error) {
	participation, err := s.loadScoped(ctx, admin, id)
	if err != nil {
		return nil, err
	}

	next := entity.ParticipationStatus(req.Status)
	if !participation.Status.CanTransitionTo(next) {
		return nil, invalidTransition(participation.Status, next)
	}

	fields := map[string]any{
		"status":     next,
		"updated_at": time.Now(),
	}
	if err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Candidate != nil {
		s.notifyDecision(ctx, updated, validator.SanitizeOptional(req.Reason))
	}
	return updated, nil
}

func (s *participationService) notifyDecision(ctx context.Context, p *entity.Participation, reason *string) {
	n := &entity.Notification{
		CandidateID: p.CandidateID,
		Nupcan:      p.Candidate.Nupcan,
		Email:       p.Candidate.Email,
		Recipient:   p.Candidate.FullName(),
		Reason:      reason,
	}

	label := ""
	if p.Contest != nil {
		label = p.Contest.Label
	}

	if p.Status == entity.ParticipationValidated {
		n.Type = entity.NotificationApplicationValid
		n.Title = "Candidature validée"
		n.Message = fmt.Sprintf("Votre candidature %s au concours %s a été validée.", p.ApplicationNumber, label)
	} else {
		n.Type = entity.NotificationApplicationReject
		n.Title = "Candidature rejetée"
		n.Message = fmt.Sprintf("Votre candidature %s au concours %s a été rejetée.", p.ApplicationNumber, label)
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		log.Printf("Failed to queue decision notification for %s: %v", p.ApplicationNumber, err)
	}
}

// Delete removes a participation unless a validated payment exists for the same candidate and contest.
func (s *participationService) Delete(ctx context.Context, admin *entity.Admin, id uuid.UUID) error {
	participation, err := s.loadScoped(ctx, admin, id)
	if err != nil {
		return err
	}

	payments, err := s.payments.FindByCandidate(ctx, participation.CandidateID)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if p.Status == entity.StatusValidated && p.ContestID != nil && *p.ContestID == participation.ContestID {
			return apperror.Conflict("Un paiement validé est rattaché à cette candidature")
		}
	}

	return s.repo.Delete(ctx, id)
}

// SyncStatus advances each non-terminal participation of the candidate to the status implied
// by the progression calculator, one legal step at a time. It never moves a status backwards.
func (s *participationService) SyncStatus(ctx context.Context, candidateID uuid.UUID) error {
	participations, err := s.repo.FindByCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if len(participations) == 0 {
		return nil
	}

	documents, err := s.documents.FindByCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	payments, err := s.payments.FindByCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	candidate := &entity.Candidate{ID: candidateID}
	for i := range participations {
		p := &participations[i]
		if p.Status.Terminal() || p.Contest == nil {
			continue
		}

		result := progression.Compute(candidate, documents, progression.SelectPayment(payments, p.ContestID), p.Contest.Fee)
		target := entity.ParticipationStatusForStages(result.Completed)

		next := p.Status
		for next.Rank() < target.Rank() {
			step, ok := forwardStep(next)
			if !ok {
				break
			}
			next = step
		}

		if next == p.Status {
			continue
		}

		if err := s.repo.Updates(ctx, p.ID, map[string]any{"status": next, "updated_at": time.Now()}); err != nil {
			return fmt.Errorf("failed to advance participation %s: %w", p.ApplicationNumber, err)
		}
		log.Printf("Participation %s advanced from %s to %s", p.ApplicationNumber, p.Status, next)
	}

	return nil
}

func forwardStep(from entity.ParticipationStatus) (entity.ParticipationStatus, bool) {
	for _, step := range []entity.ParticipationStatus{
		entity.ParticipationDocsSubmitted,
		entity.ParticipationPaymentDone,
	} {
		if from.CanTransitionTo(step) {
			return step, true
		}
	}
	return from, false
}

func invalidTransition(from, to entity.ParticipationStatus) error {
	return apperror.Validation(
		"Transition de statut invalide",
		fmt.Sprintf("Impossible de passer de %s à %s", from, to),
	)
}
