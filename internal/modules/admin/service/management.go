package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/modules/admin/dto"
	"gabconcours.ga/backend/internal/modules/admin/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/mailer"
	"gabconcours.ga/backend/pkg/numbering"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type InstitutionFinder interface {
	FindInstitutionByID(ctx context.Context, id uuid.UUID) (*entity.Institution, error)
}

// ManagementService is the super-admin surface over institution admins.
type ManagementService interface {
	List(ctx context.Context, filter dto.AdminFilter) ([]*entity.Admin, error)
	Create(ctx context.Context, creator *entity.Admin, input dto.CreateAdminInput) (*dto.CreateAdminResponse, error)
	Update(ctx context.Context, id uuid.UUID, input dto.UpdateAdminInput) (*entity.Admin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type managementService struct {
	repo         repository.AdminRepository
	institutions InstitutionFinder
	mailer       mailer.Mailer
	loginURL     string
}

func NewManagementService(repo repository.AdminRepository, institutions InstitutionFinder, m mailer.Mailer, loginURL string) ManagementService {
	return &managementService{
		repo:         repo,
		institutions: institutions,
		mailer:       m,
		loginURL:     loginURL,
	}
}

func (s *managementService) List(ctx context.Context, filter dto.AdminFilter) ([]*entity.Admin, error) {
	repoFilter := repository.AdminFilter{Role: filter.Role}
	if filter.InstitutionID != "" {
		id, err := uuid.Parse(filter.InstitutionID)
		if err != nil {
			return nil, apperror.Validation("Établissement invalide")
		}
		repoFilter.InstitutionID = &id
	}
	return s.repo.FindAll(ctx, repoFilter)
}

// Create provisions an institution admin with a temporary password sent by email.
// A failed email does not undo the account; EmailSent tells the caller.
func (s *managementService) Create(ctx context.Context, creator *entity.Admin, input dto.CreateAdminInput) (*dto.CreateAdminResponse, error) {
	institution, err := s.findInstitution(ctx, input.InstitutionID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("Un administrateur utilise déjà cet email")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tempPassword := numbering.TemporaryPassword()
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &entity.Admin{
		LastName:      validator.SanitizeText(input.LastName),
		FirstName:     validator.SanitizeText(input.FirstName),
		Email:         email,
		PasswordHash:  string(hashed),
		Role:          entity.RoleInstitutionAdmin,
		InstitutionID: &institution.ID,
		Active:        true,
	}
	if creator != nil {
		admin.CreatedByID = &creator.ID
	}

	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Un administrateur utilise déjà cet email")
		}
		return nil, err
	}
	admin.Institution = institution

	sent := s.sendCredentials(ctx, admin, institution, tempPassword)
	return &dto.CreateAdminResponse{Admin: admin, EmailSent: sent}, nil
}

func (s *managementService) sendCredentials(ctx context.Context, admin *entity.Admin, institution *entity.Institution, tempPassword string) bool {
	if s.mailer == nil {
		return false
	}

	body, err := mailer.Render(mailer.TemplateAdminCredentials, mailer.AdminCredentialsData{
		FullName:        admin.FirstName + " " + admin.LastName,
		InstitutionName: institution.Name,
		Email:           admin.Email,
		TempPassword:    tempPassword,
		LoginURL:        s.loginURL,
	})
	if err != nil {
		log.Printf("Failed to render credentials email for %s: %v", admin.Email, err)
		return false
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      admin.Email,
		Subject: fmt.Sprintf("Vos accès administrateur - %s", institution.Name),
		HTML:    body,
	})
	if err != nil {
		log.Printf("Failed to send credentials email to %s: %v", admin.Email, err)
		return false
	}
	return true
}

func (s *managementService) Update(ctx context.Context, id uuid.UUID, input dto.UpdateAdminInput) (*entity.Admin, error) {
	admin, err := s.findManaged(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.LastName != nil {
		admin.LastName = validator.SanitizeText(*input.LastName)
	}
	if input.FirstName != nil {
		admin.FirstName = validator.SanitizeText(*input.FirstName)
	}
	if input.Email != nil {
		admin.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Active != nil {
		admin.Active = *input.Active
	}
	if input.InstitutionID != nil {
		institution, err := s.findInstitution(ctx, *input.InstitutionID)
		if err != nil {
			return nil, err
		}
		admin.InstitutionID = &institution.ID
		admin.Institution = institution
	}

	if err := s.repo.Update(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Un administrateur utilise déjà cet email")
		}
		return nil, err
	}
	return admin, nil
}

func (s *managementService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findManaged(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// findManaged loads an admin the management surface may touch. Super admins are not.
func (s *managementService) findManaged(ctx context.Context, id uuid.UUID) (*entity.Admin, error) {
	admin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Administrateur introuvable")
		}
		return nil, err
	}
	if admin.IsSuperAdmin() {
		return nil, apperror.Forbidden("Un super administrateur ne peut pas être modifié")
	}
	return admin, nil
}

func (s *managementService) findInstitution(ctx context.Context, id uuid.UUID) (*entity.Institution, error) {
	institution, err := s.institutions.FindInstitutionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Établissement introuvable")
		}
		return nil, err
	}
	return institution, nil
}
