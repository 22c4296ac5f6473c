package repository

import (
	"context"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ParticipationRepository interface {
	Create(ctx context.Context, participation *entity.Participation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Participation, error)
	FindByApplicationNumber(ctx context.Context, number string) (*entity.Participation, error)
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error)
	FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Participation, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ParticipationStatus]int64, error)
}

type participationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepository{db: db}
}

func (r *participationRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Contest.Institution").
		Preload("Track")
}

func (r *participationRepository) Create(ctx context.Context, participation *entity.Participation) error {
	return r.db.WithContext(ctx).Omit("Candidate", "Contest", "Track").Create(participation).Error
}

func (r *participationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Participation, error) {
	var participation entity.Participation
	if err := r.withDetails(ctx).Preload("Candidate").First(&participation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &participation, nil
}

func (r *participationRepository) FindByApplicationNumber(ctx context.Context, number string) (*entity.Participation, error) {
	var participation entity.Participation
	err := r.withDetails(ctx).Preload("Candidate").
		Where("application_number = ?", number).
		First(&participation).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}

func (r *participationRepository) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Participation, error) {
	var participations []entity.Participation
	err := r.withDetails(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at asc").
		Find(&participations).Error
	return participations, err
}

func (r *participationRepository) FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Participation, error) {
	var participations []entity.Participation
	err := r.withDetails(ctx).Preload("Candidate").
		Joins("JOIN contests ON contests.id = participations.contest_id").
		Where("contests.institution_id = ?", institutionID).
		Order("participations.created_at desc").
		Find(&participations).Error
	return participations, err
}

// Updates merges fields into the row; updated_at is always refreshed.
func (r *participationRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entity.Participation{ID: id}).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *participationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Participation{}, "id = ?", id).Error
}

func (r *participationRepository) CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ParticipationStatus]int64, error) {
	var rows []struct {
		Status entity.ParticipationStatus
		Total  int64
	}

	query := r.db.WithContext(ctx).Model(&entity.Participation{}).
		Select("participations.status AS status, COUNT(*) AS total")
	if institutionID != nil {
		query = query.Joins("JOIN contests ON contests.id = participations.contest_id").
			Where("contests.institution_id = ?", *institutionID)
	}

	if err := query.Group("participations.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.ParticipationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
