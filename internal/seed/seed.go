// Package seed loads reference data and bootstrap accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/pkg/numbering"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrAdminExists = errors.New("admin already exists")

// Provinces lists the nine provinces of Gabon.
var Provinces = []string{
	"Estuaire",
	"Haut-Ogooué",
	"Moyen-Ogooué",
	"Ngounié",
	"Nyanga",
	"Ogooué-Ivindo",
	"Ogooué-Lolo",
	"Ogooué-Maritime",
	"Woleu-Ntem",
}

// SeedProvinces inserts the missing provinces and returns how many were created.
func SeedProvinces(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, name := range Provinces {
		var count int64
		if err := db.WithContext(ctx).Model(&entity.Province{}).
			Where("name = ?", name).
			Count(&count).Error; err != nil {
			return created, err
		}

		if count == 0 {
			if err := db.WithContext(ctx).Create(&entity.Province{Name: name}).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

// Institution returns the institution with this acronym, creating it when absent.
func Institution(ctx context.Context, db *gorm.DB, name, acronym string) (*entity.Institution, bool, error) {
	name, acronym = strings.TrimSpace(name), strings.ToUpper(strings.TrimSpace(acronym))
	if name == "" || acronym == "" {
		return nil, false, fmt.Errorf("institution name and acronym are required")
	}

	var existing entity.Institution
	err := db.WithContext(ctx).Where("acronym = ?", acronym).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	institution := &entity.Institution{Name: name, Acronym: acronym}
	if err := db.WithContext(ctx).Create(institution).Error; err != nil {
		return nil, false, err
	}
	return institution, true, nil
}

// SuperAdminInput describes the bootstrap account. An empty Password gets a generated one.
type SuperAdminInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// SuperAdmin creates a super admin and returns the clear password so the operator can hand it over.
// It returns ErrAdminExists when the email is taken.
func SuperAdmin(ctx context.Context, db *gorm.DB, input SuperAdminInput) (*entity.Admin, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, "", fmt.Errorf("email is required")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.Admin{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", ErrAdminExists
	}

	password := input.Password
	if password == "" {
		password = numbering.TemporaryPassword()
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	admin := &entity.Admin{
		LastName:     orDefault(input.LastName, "Administrateur"),
		FirstName:    orDefault(input.FirstName, "Super"),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entity.RoleSuperAdmin,
		Active:       true,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, "", err
	}

	return admin, password, nil
}

// Development seeds a super admin for local work when none exists yet.
func Development(ctx context.Context, db *gorm.DB, email string) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Admin{}).
		Where("role = ?", entity.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Super admin already exists, skipping seed")
		return nil
	}

	_, password, err := SuperAdmin(ctx, db, SuperAdminInput{Email: email})
	if err != nil {
		return err
	}

	log.Println("Super admin seeded successfully")
	log.Printf("   Email: %s", email)
	log.Printf("   Password: %s", password)
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
