package candidate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/candidate/dto"
	"gabconcours.ga/backend/internal/modules/candidate/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/numbering"
	"gabconcours.ga/backend/pkg/storage"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNupcanAttempts = 5

var photoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type ContestFinder interface {
	FindContestByID(ctx context.Context, id uuid.UUID) (*entity.Contest, error)
}

type ParticipationBuilder interface {
	NewParticipation(candidateID, contestID uuid.UUID, trackID *uuid.UUID) *entity.Participation
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
}

type CandidateIndexer interface {
	IndexCandidate(candidate *entity.Candidate, participations []entity.Participation) error
}

type CandidateService interface {
	Register(ctx context.Context, input dto.RegisterInput, photo *dto.PhotoFile) (*dto.RegistrationResponse, error)
	GetByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
	Update(ctx context.Context, nupcan string, input dto.UpdateInput, photo *dto.PhotoFile) (*entity.Candidate, error)
	CheckNupcan(ctx context.Context, nupcan string) (*dto.NupcanAvailability, error)
	List(ctx context.Context, admin *entity.Admin, filter dto.ListFilter) (*dto.CandidateListResponse, error)
}

type candidateService struct {
	repo           repository.CandidateRepository
	contests       ContestFinder
	participations ParticipationBuilder
	imageStorage   storage.ImageStorage
	indexer        CandidateIndexer
	maxPhotoSize   int64
	now            func() time.Time
}

func NewCandidateService(
	repo repository.CandidateRepository,
	contests ContestFinder,
	participations ParticipationBuilder,
	imageStorage storage.ImageStorage,
	indexer CandidateIndexer,
	maxPhotoSize int64,
) CandidateService {
	return &candidateService{
		repo:           repo,
		contests:       contests,
		participations: participations,
		imageStorage:   imageStorage,
		indexer:        indexer,
		maxPhotoSize:   maxPhotoSize,
		now:            time.Now,
	}
}

// checkPhoto runs before any write. Photos are served publicly, so only images pass.
func (s *candidateService) checkPhoto(photo *dto.PhotoFile) error {
	if photo == nil || photo.Reader == nil {
		return nil
	}
	if s.maxPhotoSize > 0 && photo.Size > s.maxPhotoSize {
		return apperror.Validation(
			"Photo trop volumineuse",
			fmt.Sprintf("La taille maximale autorisée est de %d Mo", s.maxPhotoSize/(1024*1024)),
		)
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.Split(photo.ContentType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(photo.FileName))
	if !photoContentTypes[contentType] || !photoExtensions[ext] {
		return apperror.Validation("Type de photo non autorisé", "Formats acceptés : JPG, JPEG, PNG")
	}
	return nil
}

func (s *candidateService) Register(ctx context.Context, input dto.RegisterInput, photo *dto.PhotoFile) (*dto.RegistrationResponse, error) {
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	contestID, err := uuid.Parse(input.ContestID)
	if err != nil {
		return nil, apperror.Validation("Concours invalide")
	}

	contest, err := s.contests.FindContestByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Concours introuvable")
		}
		return nil, err
	}
	if !contest.IsOpen {
		return nil, apperror.Validation("Concours fermé", "Les inscriptions à ce concours sont closes")
	}

	trackID, err := parseOptionalID(input.TrackID)
	if err != nil {
		return nil, apperror.Validation("Filière invalide")
	}
	if trackID != nil && !contestHasTrack(contest, *trackID) {
		return nil, apperror.Validation("Filière invalide", "La filière choisie n'appartient pas à ce concours")
	}

	birthDate, err := time.Parse("2006-01-02", input.BirthDate)
	if err != nil {
		return nil, apperror.Validation("Date de naissance invalide")
	}

	candidate := &entity.Candidate{
		LastName:   validator.SanitizeText(input.LastName),
		FirstName:  validator.SanitizeText(input.FirstName),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		BirthDate:  birthDate,
		BirthPlace: validator.SanitizeText(input.BirthPlace),
		NationalID: validator.SanitizeOptional(input.NationalID),
	}

	if contest.MaxAge != nil && candidate.AgeAt(s.now()) > *contest.MaxAge {
		return nil, apperror.Validation(
			"Âge limite dépassé",
			fmt.Sprintf("L'âge maximum pour ce concours est de %d ans", *contest.MaxAge),
		)
	}

	if candidate.OriginProvinceID, err = parseOptionalID(input.OriginProvinceID); err != nil {
		return nil, apperror.Validation("Province invalide")
	}
	if candidate.CurrentProvinceID, err = parseOptionalID(input.CurrentProvinceID); err != nil {
		return nil, apperror.Validation("Province invalide")
	}
	if candidate.AssignmentProvinceID, err = parseOptionalID(input.AssignmentProvinceID); err != nil {
		return nil, apperror.Validation("Province invalide")
	}

	if photo != nil && photo.Reader != nil && s.imageStorage != nil {
		url, err := s.imageStorage.UploadImage(ctx, photo.Reader, storage.FolderPhotos, photo.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
		candidate.PhotoURL = &url
	}

	var participation *entity.Participation
	for attempt := 1; ; attempt++ {
		candidate.ID = uuid.Nil
		candidate.Nupcan, err = s.uniqueNupcan(ctx)
		if err != nil {
			return nil, err
		}

		participation = s.participations.NewParticipation(uuid.Nil, contest.ID, trackID)
		err = s.repo.CreateWithParticipation(ctx, candidate, participation)
		if err == nil {
			break
		}
		// Lost a race on the NUPCAN or application number: draw new ones.
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxNupcanAttempts {
			continue
		}
		return nil, fmt.Errorf("failed to register candidate: %w", err)
	}

	participation.Contest = contest
	if s.indexer != nil {
		if err := s.indexer.IndexCandidate(candidate, []entity.Participation{*participation}); err != nil {
			log.Printf("Failed to index candidate %s: %v", candidate.Nupcan, err)
		}
	}

	return &dto.RegistrationResponse{
		Candidate:     candidate,
		Participation: participation,
		Nupcan:        candidate.Nupcan,
	}, nil
}

// uniqueNupcan draws numbers until one is unused. The unique index still guards the insert.
func (s *candidateService) uniqueNupcan(ctx context.Context) (string, error) {
	for i := 0; i < maxNupcanAttempts; i++ {
		nupcan := numbering.Nupcan(s.now())
		exists, err := s.repo.ExistsNupcan(ctx, nupcan)
		if err != nil {
			return "", err
		}
		if !exists {
			return nupcan, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique nupcan after %d attempts", maxNupcanAttempts)
}

func (s *candidateService) GetByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error) {
	candidate, err := s.repo.FindByNupcan(ctx, strings.TrimSpace(nupcan))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Candidat introuvable")
		}
		return nil, err
	}
	return candidate, nil
}

func (s *candidateService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error) {
	candidate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Candidat introuvable")
		}
		return nil, err
	}
	return candidate, nil
}

// Update merges the provided fields. The NUPCAN itself is never rewritten.
func (s *candidateService) Update(ctx context.Context, nupcan string, input dto.UpdateInput, photo *dto.PhotoFile) (*entity.Candidate, error) {
	if err := s.checkPhoto(photo); err != nil {
		return nil, err
	}

	candidate, err := s.GetByNupcan(ctx, nupcan)
	if err != nil {
		return nil, err
	}

	if input.LastName != nil {
		candidate.LastName = validator.SanitizeText(*input.LastName)
	}
	if input.FirstName != nil {
		candidate.FirstName = validator.SanitizeText(*input.FirstName)
	}
	if input.Email != nil {
		candidate.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		candidate.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BirthPlace != nil {
		candidate.BirthPlace = validator.SanitizeText(*input.BirthPlace)
	}
	if input.NationalID != nil {
		candidate.NationalID = validator.SanitizeOptional(*input.NationalID)
	}
	if input.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *input.BirthDate)
		if err != nil {
			return nil, apperror.Validation("Date de naissance invalide")
		}
		candidate.BirthDate = birthDate
	}

	for _, field := range []struct {
		value  *string
		target **uuid.UUID
	}{
		{input.OriginProvinceID, &candidate.OriginProvinceID},
		{input.CurrentProvinceID, &candidate.CurrentProvinceID},
		{input.AssignmentProvinceID, &candidate.AssignmentProvinceID},
	} {
		if field.value == nil {
			continue
		}
		id, err := parseOptionalID(*field.value)
		if err != nil {
			return nil, apperror.Validation("Province invalide")
		}
		*field.target = id
	}

	if photo != nil && photo.Reader != nil && s.imageStorage != nil {
		oldURL := candidate.PhotoURL
		url, err := s.imageStorage.UploadImage(ctx, photo.Reader, storage.FolderPhotos, photo.FileName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload photo: %w", err)
		}
		candidate.PhotoURL = &url

		if oldURL != nil {
			if err := s.imageStorage.DeleteImage(ctx, *oldURL); err != nil {
				log.Printf("Failed to delete previous photo of %s: %v", candidate.Nupcan, err)
			}
		}
	}

	if err := s.repo.Update(ctx, candidate); err != nil {
		return nil, err
	}

	if s.indexer != nil {
		participations, err := s.participations.FindByCandidate(ctx, candidate.ID)
		if err == nil {
			err = s.indexer.IndexCandidate(candidate, participations)
		}
		if err != nil {
			log.Printf("Failed to reindex candidate %s: %v", candidate.Nupcan, err)
		}
	}

	return candidate, nil
}

func (s *candidateService) CheckNupcan(ctx context.Context, nupcan string) (*dto.NupcanAvailability, error) {
	nupcan = strings.TrimSpace(nupcan)
	if nupcan == "" {
		return nil, apperror.Validation("NUPCAN requis")
	}

	exists, err := s.repo.ExistsNupcan(ctx, nupcan)
	if err != nil {
		return nil, err
	}
	return &dto.NupcanAvailability{Nupcan: nupcan, Available: !exists}, nil
}

func (s *candidateService) List(ctx context.Context, admin *entity.Admin, filter dto.ListFilter) (*dto.CandidateListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.CandidateFilter{
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: (filter.Page - 1) * filter.Limit,
	}

	institutionID, err := parseOptionalID(filter.InstitutionID)
	if err != nil {
		return nil, apperror.Validation("Établissement invalide")
	}
	if !admin.IsSuperAdmin() {
		if institutionID != nil && !admin.CanAccessInstitution(*institutionID) {
			return nil, apperror.Forbidden("Accès limité à votre établissement")
		}
		institutionID = admin.InstitutionID
		if institutionID == nil {
			return nil, apperror.Forbidden("Aucun établissement n'est rattaché à ce compte")
		}
	}
	repoFilter.InstitutionID = institutionID

	candidates, total, err := s.repo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return &dto.CandidateListResponse{
		Data: candidates,
		Meta: dto.PaginationMeta{CurrentPage: filter.Page, TotalItems: total, Limit: filter.Limit},
	}, nil
}

func contestHasTrack(contest *entity.Contest, trackID uuid.UUID) bool {
	for _, track := range contest.Tracks {
		if track.ID == trackID {
			return true
		}
	}
	return false
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
