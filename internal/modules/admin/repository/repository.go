package repository

import (
	"context"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminFilter struct {
	Role          string
	InstitutionID *uuid.UUID
}

type AdminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error)
	FindByEmail(ctx context.Context, email string) (*entity.Admin, error)
	FindAll(ctx context.Context, filter AdminFilter) ([]*entity.Admin, error)
	Update(ctx context.Context, admin *entity.Admin) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *entity.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	var admin entity.Admin
	if err := r.db.WithContext(ctx).Preload("Institution").First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	var admin entity.Admin
	if err := r.db.WithContext(ctx).Preload("Institution").Where("LOWER(email) = LOWER(?)", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindAll(ctx context.Context, filter AdminFilter) ([]*entity.Admin, error) {
	var admins []*entity.Admin
	query := r.db.WithContext(ctx).Preload("Institution")

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}

	if err := query.Order("created_at desc").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepository) Update(ctx context.Context, admin *entity.Admin) error {
	return r.db.WithContext(ctx).Omit("Institution").Save(admin).Error
}

func (r *adminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
}

func (r *adminRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Admin{}, "id = ?", id).Error
}
