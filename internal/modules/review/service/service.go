package review

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"gabconcours.ga/backend/internal/entity"
	candidateRepo "gabconcours.ga/backend/internal/modules/candidate/repository"
	documentDto "gabconcours.ga/backend/internal/modules/document/dto"
	paymentRepo "gabconcours.ga/backend/internal/modules/payment/repository"
	"gabconcours.ga/backend/internal/modules/review/dto"
	search "gabconcours.ga/backend/internal/modules/search/service"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
)

const (
	SourceSearchIndex = "meilisearch"
	SourceDatabase    = "database"
)

type CandidateStore interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Candidate, error)
	FindAll(ctx context.Context, filter candidateRepo.CandidateFilter) ([]entity.Candidate, int64, error)
}

type ParticipationFinder interface {
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
	FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Participation, error)
}

type DocumentFinder interface {
	FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Document, error)
}

type DocumentReviewer interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	UpdateStatus(ctx context.Context, adminID uuid.UUID, id uuid.UUID, req documentDto.UpdateStatusRequest) (*entity.Document, error)
}

type PaymentReviewer interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	List(ctx context.Context, filter paymentRepo.PaymentFilter) ([]entity.Payment, error)
	Validate(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) (*entity.Payment, error)
}

type CandidateSearcher interface {
	SearchCandidates(query string, institutionID *uuid.UUID, limit, offset int) (*search.Result, error)
	GenerateSearchToken(admin *entity.Admin) (string, error)
}

type ReviewService interface {
	InstitutionCandidates(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]dto.CandidateFile, error)
	InstitutionDossiers(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]dto.DossierEntry, error)
	InstitutionPayments(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]entity.Payment, error)
	ValidateDocument(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.ValidateDocumentRequest) (*entity.Document, error)
	ValidatePayment(ctx context.Context, admin *entity.Admin, id uuid.UUID) (*entity.Payment, error)
	RejectPayment(ctx context.Context, admin *entity.Admin, id uuid.UUID, reason string) (*entity.Payment, error)
	SearchCandidates(ctx context.Context, admin *entity.Admin, query dto.SearchQuery) (*dto.SearchResponse, error)
	SearchToken(admin *entity.Admin) (*dto.SearchToken, error)
}

type reviewService struct {
	candidates     CandidateStore
	participations ParticipationFinder
	documentRows   DocumentFinder
	documents      DocumentReviewer
	payments       PaymentReviewer
	searcher       CandidateSearcher
}

// NewReviewService wires the admin review surface. searcher may be nil when Meilisearch is not configured.
func NewReviewService(
	candidates CandidateStore,
	participations ParticipationFinder,
	documentRows DocumentFinder,
	documents DocumentReviewer,
	payments PaymentReviewer,
	searcher CandidateSearcher,
) ReviewService {
	return &reviewService{
		candidates:     candidates,
		participations: participations,
		documentRows:   documentRows,
		documents:      documents,
		payments:       payments,
		searcher:       searcher,
	}
}

func authorize(admin *entity.Admin, institutionID uuid.UUID) error {
	if !admin.CanAccessInstitution(institutionID) {
		return apperror.Forbidden("Accès non autorisé à cet établissement")
	}
	return nil
}

// scopeOf returns the institution an admin_etablissement is pinned to, nil for a super admin.
func scopeOf(admin *entity.Admin) (*uuid.UUID, error) {
	if admin.IsSuperAdmin() {
		return nil, nil
	}
	if admin.InstitutionID == nil {
		return nil, apperror.Forbidden("Aucun établissement n'est rattaché à ce compte")
	}
	return admin.InstitutionID, nil
}

func (s *reviewService) InstitutionCandidates(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]dto.CandidateFile, error) {
	if err := authorize(admin, institutionID); err != nil {
		return nil, err
	}

	participations, err := s.participations.FindByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	documents, err := s.documentRows.FindByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	byCandidate := make(map[uuid.UUID][]entity.Document)
	for _, d := range documents {
		byCandidate[d.CandidateID] = append(byCandidate[d.CandidateID], d)
	}

	files := make([]dto.CandidateFile, 0, len(participations))
	for _, p := range participations {
		file := dto.CandidateFile{
			Candidate:         p.Candidate,
			ApplicationNumber: p.ApplicationNumber,
			Status:            p.Status,
			Documents:         byCandidate[p.CandidateID],
		}
		if p.Contest != nil {
			file.ContestLabel = p.Contest.Label
		}
		if file.Documents == nil {
			file.Documents = []entity.Document{}
		}
		files = append(files, file)
	}
	return files, nil
}

func (s *reviewService) InstitutionDossiers(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]dto.DossierEntry, error) {
	if err := authorize(admin, institutionID); err != nil {
		return nil, err
	}

	participations, err := s.participations.FindByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	owners := make(map[uuid.UUID]*entity.Candidate, len(participations))
	for _, p := range participations {
		if p.Candidate != nil {
			owners[p.CandidateID] = p.Candidate
		}
	}

	documents, err := s.documentRows.FindByInstitution(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.DossierEntry, 0, len(documents))
	for _, d := range documents {
		entry := dto.DossierEntry{Document: d}
		if owner, ok := owners[d.CandidateID]; ok {
			entry.LastName = owner.LastName
			entry.FirstName = owner.FirstName
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *reviewService) InstitutionPayments(ctx context.Context, admin *entity.Admin, institutionID uuid.UUID) ([]entity.Payment, error) {
	if err := authorize(admin, institutionID); err != nil {
		return nil, err
	}
	return s.payments.List(ctx, paymentRepo.PaymentFilter{InstitutionID: &institutionID})
}

// ValidateDocument accepts the decision when one of the owner's contests belongs to the admin's institution.
// en_attente puts the document back in the review queue and clears the previous decision.
func (s *reviewService) ValidateDocument(ctx context.Context, admin *entity.Admin, id uuid.UUID, req dto.ValidateDocumentRequest) (*entity.Document, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("Statut de validation invalide")
	}
	if req.Status == entity.StatusRejected && strings.TrimSpace(req.Reason) == "" {
		return nil, apperror.Validation("Motif de rejet requis")
	}

	document, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !admin.IsSuperAdmin() {
		participations, err := s.participations.FindByCandidate(ctx, document.CandidateID)
		if err != nil {
			return nil, err
		}
		if !anyAccessible(admin, participations) {
			return nil, apperror.Forbidden("Accès non autorisé à cet établissement")
		}
	}

	return s.documents.UpdateStatus(ctx, admin.ID, id, documentDto.UpdateStatusRequest{
		Status: req.Status,
		Reason: req.Reason,
	})
}

func anyAccessible(admin *entity.Admin, participations []entity.Participation) bool {
	for _, p := range participations {
		if p.Contest != nil && admin.CanAccessInstitution(p.Contest.InstitutionID) {
			return true
		}
	}
	return false
}

// authorizePayment scopes by the payment's contest. Payments never linked to a contest are super admin only.
func (s *reviewService) authorizePayment(ctx context.Context, admin *entity.Admin, id uuid.UUID) error {
	payment, err := s.payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if admin.IsSuperAdmin() {
		return nil
	}
	if payment.Contest == nil {
		return apperror.Forbidden("Paiement non rattaché à un concours")
	}
	return authorize(admin, payment.Contest.InstitutionID)
}

func (s *reviewService) ValidatePayment(ctx context.Context, admin *entity.Admin, id uuid.UUID) (*entity.Payment, error) {
	if err := s.authorizePayment(ctx, admin, id); err != nil {
		return nil, err
	}
	return s.payments.Validate(ctx, id)
}

func (s *reviewService) RejectPayment(ctx context.Context, admin *entity.Admin, id uuid.UUID, reason string) (*entity.Payment, error) {
	if err := s.authorizePayment(ctx, admin, id); err != nil {
		return nil, err
	}
	return s.payments.Reject(ctx, id, reason)
}

func (s *reviewService) SearchCandidates(ctx context.Context, admin *entity.Admin, query dto.SearchQuery) (*dto.SearchResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}
	offset := (query.Page - 1) * query.Limit

	institutionID, err := scopeOf(admin)
	if err != nil {
		return nil, err
	}

	if s.searcher != nil && strings.TrimSpace(query.Query) != "" {
		res, err := s.searchIndex(ctx, query.Query, institutionID, query.Limit, offset)
		if err == nil {
			return res, nil
		}
		log.Printf("Search index unavailable, falling back to database: %v", err)
	}

	candidates, total, err := s.candidates.FindAll(ctx, candidateRepo.CandidateFilter{
		Search:        query.Query,
		InstitutionID: institutionID,
		Limit:         query.Limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.SearchResponse{Data: candidates, Total: total, Source: SourceDatabase}, nil
}

func (s *reviewService) searchIndex(ctx context.Context, query string, institutionID *uuid.UUID, limit, offset int) (*dto.SearchResponse, error) {
	result, err := s.searcher.SearchCandidates(query, institutionID, limit, offset)
	if err != nil {
		return nil, err
	}

	rows, err := s.candidates.FindByIDs(ctx, result.IDs)
	if err != nil {
		return nil, err
	}

	// Keep the index ranking; ids missing from the database are dropped.
	byID := make(map[uuid.UUID]entity.Candidate, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	ordered := make([]entity.Candidate, 0, len(result.IDs))
	for _, id := range result.IDs {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}

	return &dto.SearchResponse{Data: ordered, Total: result.Total, Source: SourceSearchIndex}, nil
}

func (s *reviewService) SearchToken(admin *entity.Admin) (*dto.SearchToken, error) {
	if s.searcher == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "Recherche indisponible", nil)
	}
	if _, err := scopeOf(admin); err != nil {
		return nil, err
	}

	token, err := s.searcher.GenerateSearchToken(admin)
	if err != nil {
		if errors.Is(err, search.ErrSigningKeyMissing) {
			return nil, apperror.New(http.StatusServiceUnavailable, "Recherche indisponible", err)
		}
		return nil, err
	}
	return &dto.SearchToken{Token: token, Index: search.CandidatesIndex}, nil
}
