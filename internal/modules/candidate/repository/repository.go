package repository

import (
	"context"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CandidateFilter struct {
	Search        string
	InstitutionID *uuid.UUID
	Limit         int
	Offset        int
}

type CandidateRepository interface {
	CreateWithParticipation(ctx context.Context, candidate *entity.Candidate, participation *entity.Participation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error)
	FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Candidate, error)
	ExistsNupcan(ctx context.Context, nupcan string) (bool, error)
	FindAll(ctx context.Context, filter CandidateFilter) ([]entity.Candidate, int64, error)
	Update(ctx context.Context, candidate *entity.Candidate) error
	Count(ctx context.Context, institutionID *uuid.UUID) (int64, error)
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// CreateWithParticipation stores the candidate and its first participation atomically.
func (r *candidateRepository) CreateWithParticipation(ctx context.Context, candidate *entity.Candidate, participation *entity.Participation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(candidate).Error; err != nil {
			return err
		}

		participation.CandidateID = candidate.ID
		if err := tx.Omit("Candidate", "Contest", "Track").Create(participation).Error; err != nil {
			return err
		}

		return nil
	})
}

func (r *candidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Candidate, error) {
	var candidate entity.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByNupcan(ctx context.Context, nupcan string) (*entity.Candidate, error) {
	var candidate entity.Candidate
	if err := r.db.WithContext(ctx).Where("nupcan = ?", nupcan).First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *candidateRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Candidate, error) {
	var candidates []entity.Candidate
	if len(ids) == 0 {
		return candidates, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&candidates).Error
	return candidates, err
}

func (r *candidateRepository) ExistsNupcan(ctx context.Context, nupcan string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Candidate{}).Where("nupcan = ?", nupcan).Count(&count).Error
	return count > 0, err
}

func (r *candidateRepository) scoped(ctx context.Context, institutionID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Candidate{})
	if institutionID != nil {
		query = query.Where(
			"candidates.id IN (?)",
			r.db.Table("participations").
				Select("participations.candidate_id").
				Joins("JOIN contests ON contests.id = participations.contest_id").
				Where("contests.institution_id = ?", *institutionID),
		)
	}
	return query
}

func (r *candidateRepository) FindAll(ctx context.Context, filter CandidateFilter) ([]entity.Candidate, int64, error) {
	var (
		candidates []entity.Candidate
		total      int64
	)

	query := r.scoped(ctx, filter.InstitutionID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("nupcan ILIKE ? OR last_name ILIKE ? OR first_name ILIKE ? OR email ILIKE ?", like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Order("created_at desc").Find(&candidates).Error; err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

func (r *candidateRepository) Update(ctx context.Context, candidate *entity.Candidate) error {
	return r.db.WithContext(ctx).Omit("nupcan", "created_at").Save(candidate).Error
}

func (r *candidateRepository) Count(ctx context.Context, institutionID *uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, institutionID).Count(&count).Error
	return count, err
}
