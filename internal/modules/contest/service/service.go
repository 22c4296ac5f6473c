package contest

import (
	"context"
	"errors"
	"fmt"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/contest/dto"
	"gabconcours.ga/backend/internal/modules/contest/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContestService interface {
	ListContests(ctx context.Context, filter dto.ContestFilter) ([]*entity.Contest, error)
	GetContest(ctx context.Context, id uuid.UUID) (*entity.Contest, error)
	ListTracks(ctx context.Context, contestID uuid.UUID) ([]entity.Track, error)
	CreateContest(ctx context.Context, req dto.CreateContestRequest) (*entity.Contest, error)
	DeleteContest(ctx context.Context, id uuid.UUID) error

	ListInstitutions(ctx context.Context) ([]*entity.Institution, error)
	ListProvinces(ctx context.Context) ([]*entity.Province, error)

	ListSubjects(ctx context.Context, filter dto.SubjectFilter) ([]*entity.Subject, error)
	CreateSubject(ctx context.Context, req dto.SubjectRequest) (*entity.Subject, error)
	UpdateSubject(ctx context.Context, id uuid.UUID, req dto.SubjectRequest) (*entity.Subject, error)
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type contestService struct {
	repo repository.ContestRepository
}

func NewContestService(repo repository.ContestRepository) ContestService {
	return &contestService{repo: repo}
}

func (s *contestService) ListContests(ctx context.Context, filter dto.ContestFilter) ([]*entity.Contest, error) {
	repoFilter := repository.ContestFilter{
		Search:   filter.Search,
		OpenOnly: filter.OpenOnly,
	}
	if filter.InstitutionID != "" {
		id, err := uuid.Parse(filter.InstitutionID)
		if err != nil {
			return nil, apperror.Validation("Identifiant d'établissement invalide")
		}
		repoFilter.InstitutionID = &id
	}
	return s.repo.FindContests(ctx, repoFilter)
}

func (s *contestService) GetContest(ctx context.Context, id uuid.UUID) (*entity.Contest, error) {
	contest, err := s.repo.FindContestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Concours introuvable")
		}
		return nil, err
	}
	return contest, nil
}

func (s *contestService) ListTracks(ctx context.Context, contestID uuid.UUID) ([]entity.Track, error) {
	contest, err := s.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.Tracks == nil {
		return []entity.Track{}, nil
	}
	return contest.Tracks, nil
}

func (s *contestService) CreateContest(ctx context.Context, req dto.CreateContestRequest) (*entity.Contest, error) {
	if req.Fee.IsNegative() {
		return nil, apperror.Validation("Frais de concours invalides", "Les frais ne peuvent pas être négatifs")
	}

	if _, err := s.repo.FindInstitutionByID(ctx, req.InstitutionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Établissement introuvable")
		}
		return nil, err
	}

	tracks, err := s.repo.FindTracksByIDs(ctx, req.TrackIDs)
	if err != nil {
		return nil, err
	}
	if len(tracks) != len(req.TrackIDs) {
		return nil, apperror.Validation("Filière inconnue", "Une ou plusieurs filières n'existent pas")
	}

	isOpen := true
	if req.IsOpen != nil {
		isOpen = *req.IsOpen
	}

	contest := &entity.Contest{
		Label:         req.Label,
		Session:       req.Session,
		Fee:           req.Fee,
		MaxAge:        req.MaxAge,
		IsOpen:        isOpen,
		InstitutionID: req.InstitutionID,
		Tracks:        tracks,
	}

	if err := s.repo.CreateContest(ctx, contest); err != nil {
		return nil, fmt.Errorf("failed to create contest: %w", err)
	}

	return s.repo.FindContestByID(ctx, contest.ID)
}

func (s *contestService) DeleteContest(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetContest(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteContest(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperror.Conflict("Ce concours a des candidatures, il ne peut pas être supprimé")
		}
		return err
	}
	return nil
}

func (s *contestService) ListInstitutions(ctx context.Context) ([]*entity.Institution, error) {
	return s.repo.FindInstitutions(ctx)
}

func (s *contestService) ListProvinces(ctx context.Context) ([]*entity.Province, error) {
	return s.repo.FindProvinces(ctx)
}

func (s *contestService) ListSubjects(ctx context.Context, filter dto.SubjectFilter) ([]*entity.Subject, error) {
	var trackID *uuid.UUID
	if filter.TrackID != "" {
		id, err := uuid.Parse(filter.TrackID)
		if err != nil {
			return nil, apperror.Validation("Identifiant de filière invalide")
		}
		trackID = &id
	}
	return s.repo.FindSubjects(ctx, trackID)
}

func (s *contestService) CreateSubject(ctx context.Context, req dto.SubjectRequest) (*entity.Subject, error) {
	subject := &entity.Subject{
		Name:        req.Name,
		Coefficient: coefficientOrDefault(req.Coefficient),
		TrackID:     req.TrackID,
	}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *contestService) UpdateSubject(ctx context.Context, id uuid.UUID, req dto.SubjectRequest) (*entity.Subject, error) {
	subject, err := s.repo.FindSubjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Matière introuvable")
		}
		return nil, err
	}

	subject.Name = req.Name
	subject.Coefficient = coefficientOrDefault(req.Coefficient)
	subject.TrackID = req.TrackID

	if err := s.repo.UpdateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *contestService) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindSubjectByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Matière introuvable")
		}
		return err
	}
	return s.repo.DeleteSubject(ctx, id)
}

func coefficientOrDefault(c int) int {
	if c <= 0 {
		return 1
	}
	return c
}
