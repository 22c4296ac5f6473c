package repository

import (
	"context"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContestFilter struct {
	Search        string
	InstitutionID *uuid.UUID
	OpenOnly      bool
}

type ContestRepository interface {
	CreateContest(ctx context.Context, contest *entity.Contest) error
	FindContestByID(ctx context.Context, id uuid.UUID) (*entity.Contest, error)
	FindContests(ctx context.Context, filter ContestFilter) ([]*entity.Contest, error)
	DeleteContest(ctx context.Context, id uuid.UUID) error
	CountOpenContests(ctx context.Context, institutionID *uuid.UUID) (int64, error)

	FindTracksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Track, error)

	FindInstitutions(ctx context.Context) ([]*entity.Institution, error)
	FindInstitutionByID(ctx context.Context, id uuid.UUID) (*entity.Institution, error)
	FindProvinces(ctx context.Context) ([]*entity.Province, error)

	CreateSubject(ctx context.Context, subject *entity.Subject) error
	FindSubjects(ctx context.Context, trackID *uuid.UUID) ([]*entity.Subject, error)
	FindSubjectByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error)
	UpdateSubject(ctx context.Context, subject *entity.Subject) error
	DeleteSubject(ctx context.Context, id uuid.UUID) error
}

type contestRepository struct {
	db *gorm.DB
}

func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) CreateContest(ctx context.Context, contest *entity.Contest) error {
	return r.db.WithContext(ctx).Omit("Institution").Create(contest).Error
}

func (r *contestRepository) FindContestByID(ctx context.Context, id uuid.UUID) (*entity.Contest, error) {
	var contest entity.Contest
	err := r.db.WithContext(ctx).
		Preload("Institution").
		Preload("Tracks.Subjects").
		First(&contest, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *contestRepository) FindContests(ctx context.Context, filter ContestFilter) ([]*entity.Contest, error) {
	var contests []*entity.Contest
	query := r.db.WithContext(ctx).Preload("Institution")

	if filter.Search != "" {
		query = query.Where("label ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.OpenOnly {
		query = query.Where("is_open = ?", true)
	}

	if err := query.Order("created_at desc").Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (r *contestRepository) DeleteContest(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contest := &entity.Contest{ID: id}
		if err := tx.Model(contest).Association("Tracks").Clear(); err != nil {
			return err
		}
		return tx.Delete(&entity.Contest{}, "id = ?", id).Error
	})
}

func (r *contestRepository) CountOpenContests(ctx context.Context, institutionID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Contest{}).Where("is_open = ?", true)
	if institutionID != nil {
		query = query.Where("institution_id = ?", *institutionID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *contestRepository) FindTracksByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Track, error) {
	var tracks []entity.Track
	if len(ids) == 0 {
		return tracks, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tracks).Error
	return tracks, err
}

func (r *contestRepository) FindInstitutions(ctx context.Context) ([]*entity.Institution, error) {
	var institutions []*entity.Institution
	err := r.db.WithContext(ctx).Order("name asc").Find(&institutions).Error
	return institutions, err
}

func (r *contestRepository) FindInstitutionByID(ctx context.Context, id uuid.UUID) (*entity.Institution, error) {
	var institution entity.Institution
	if err := r.db.WithContext(ctx).First(&institution, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &institution, nil
}

func (r *contestRepository) FindProvinces(ctx context.Context) ([]*entity.Province, error) {
	var provinces []*entity.Province
	err := r.db.WithContext(ctx).Order("name asc").Find(&provinces).Error
	return provinces, err
}

func (r *contestRepository) CreateSubject(ctx context.Context, subject *entity.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *contestRepository) FindSubjects(ctx context.Context, trackID *uuid.UUID) ([]*entity.Subject, error) {
	var subjects []*entity.Subject
	query := r.db.WithContext(ctx)
	if trackID != nil {
		query = query.Where("track_id = ?", *trackID)
	}
	err := query.Order("name asc").Find(&subjects).Error
	return subjects, err
}

func (r *contestRepository) FindSubjectByID(ctx context.Context, id uuid.UUID) (*entity.Subject, error) {
	var subject entity.Subject
	if err := r.db.WithContext(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *contestRepository) UpdateSubject(ctx context.Context, subject *entity.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *contestRepository) DeleteSubject(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Subject{}, "id = ?", id).Error
}
