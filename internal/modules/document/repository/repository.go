package repository

import (
	"context"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Document, error)
	FindByNupcan(ctx context.Context, nupcan string) ([]entity.Document, error)
	FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Document, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ValidationStatus, reason *string, adminID *uuid.UUID, at *time.Time) error
	ExistingStoredNames(ctx context.Context, names []string) (map[string]bool, error)
	CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ValidationStatus]int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Omit("Candidate").Create(document).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var document entity.Document
	if err := r.db.WithContext(ctx).First(&document, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Document, error) {
	var documents []entity.Document
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("uploaded_at desc").
		Find(&documents).Error
	return documents, err
}

func (r *documentRepository) FindByNupcan(ctx context.Context, nupcan string) ([]entity.Document, error) {
	var documents []entity.Document
	err := r.db.WithContext(ctx).
		Where("nupcan = ?", nupcan).
		Order("uploaded_at desc").
		Find(&documents).Error
	return documents, err
}

// institutionScope limits documents to candidates holding a participation in one of the institution's contests.
func (r *documentRepository) institutionScope(query *gorm.DB, institutionID uuid.UUID) *gorm.DB {
	return query.Where(
		"documents.candidate_id IN (?)",
		r.db.Table("participations").
			Select("participations.candidate_id").
			Joins("JOIN contests ON contests.id = participations.contest_id").
			Where("contests.institution_id = ?", institutionID),
	)
}

func (r *documentRepository) FindByInstitution(ctx context.Context, institutionID uuid.UUID) ([]entity.Document, error) {
	var documents []entity.Document
	query := r.institutionScope(r.db.WithContext(ctx).Model(&entity.Document{}), institutionID)
	err := query.Order("uploaded_at desc").Find(&documents).Error
	return documents, err
}

func (r *documentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ValidationStatus, reason *string, adminID *uuid.UUID, at *time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Document{ID: id}).Updates(map[string]any{
		"status":           status,
		"rejection_reason": reason,
		"validated_by_id":  adminID,
		"validated_at":     at,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistingStoredNames returns which of names still have a document row.
func (r *documentRepository) ExistingStoredNames(ctx context.Context, names []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(names))
	if len(names) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).Model(&entity.Document{}).
		Where("stored_name IN ?", names).
		Pluck("stored_name", &found).Error
	if err != nil {
		return nil, err
	}
	for _, name := range found {
		existing[name] = true
	}
	return existing, nil
}

func (r *documentRepository) CountByStatus(ctx context.Context, institutionID *uuid.UUID) (map[entity.ValidationStatus]int64, error) {
	var rows []struct {
		Status entity.ValidationStatus
		Total  int64
	}

	query := r.db.WithContext(ctx).Model(&entity.Document{}).
		Select("documents.status AS status, COUNT(*) AS total")
	if institutionID != nil {
		query = r.institutionScope(query, *institutionID)
	}

	if err := query.Group("documents.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entity.ValidationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
