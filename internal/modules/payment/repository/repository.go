package repository

import (
	"context"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentFilter struct {
	Status        entity.ValidationStatus
	InstitutionID *uuid.UUID
}

type PaymentTotals struct {
	Count          int64
	ValidatedCount int64
	PendingCount   int64
	ValidatedSum   decimal.Decimal
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByNupcan(ctx context.Context, nupcan string) ([]entity.Payment, error)
	FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]entity.Payment, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Totals(ctx context.Context, institutionID *uuid.UUID) (*PaymentTotals, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Omit("Candidate", "Contest").Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	if err := r.db.WithContext(ctx).Preload("Contest").First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByNupcan(ctx context.Context, nupcan string) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).Preload("Contest").
		Where("nupcan = ?", nupcan).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByCandidate(ctx context.Context, candidateID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at desc").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) scoped(query *gorm.DB, institutionID *uuid.UUID) *gorm.DB {
	if institutionID == nil {
		return query
	}
	return query.Joins("JOIN contests ON contests.id = payments.contest_id").
		Where("contests.institution_id = ?", *institutionID)
}

func (r *paymentRepository) FindAll(ctx context.Context, filter PaymentFilter) ([]entity.Payment, error) {
	var payments []entity.Payment
	query := r.scoped(r.db.WithContext(ctx).Model(&entity.Payment{}).Preload("Contest"), filter.InstitutionID)
	if filter.Status != "" {
		query = query.Where("payments.status = ?", filter.Status)
	}
	err := query.Order("payments.created_at desc").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&entity.Payment{ID: id}).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) Totals(ctx context.Context, institutionID *uuid.UUID) (*PaymentTotals, error) {
	var row struct {
		Total     int64
		Validated int64
		Pending   int64
		Amount    decimal.Decimal
	}

	query := r.scoped(r.db.WithContext(ctx).Model(&entity.Payment{}), institutionID).Select(
		"COUNT(*) AS total, " +
			"COUNT(*) FILTER (WHERE payments.status = 'valide') AS validated, " +
			"COUNT(*) FILTER (WHERE payments.status = 'en_attente') AS pending, " +
			"COALESCE(SUM(payments.amount) FILTER (WHERE payments.status = 'valide'), 0) AS amount",
	)
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &PaymentTotals{
		Count:          row.Total,
		ValidatedCount: row.Validated,
		PendingCount:   row.Pending,
		ValidatedSum:   row.Amount,
	}, nil
}
