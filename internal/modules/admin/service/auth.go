package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/admin/dto"
	"gabconcours.ga/backend/internal/modules/admin/repository"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/metrics"
	"gabconcours.ga/backend/pkg/ratelimit"
	"github.com/mssola/useragent"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const loginAction = "admin_login"

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Me(ctx context.Context, admin *entity.Admin) (*entity.Admin, error)
	ChangePassword(ctx context.Context, admin *entity.Admin, input dto.ChangePasswordInput) error
}

type AuthOptions struct {
	Secret         string
	TokenTTL       time.Duration
	LoginRateLimit time.Duration
	Metrics        *metrics.Metrics
}

type authService struct {
	repo repository.AdminRepository
	rdb  *redis.Client
	opts AuthOptions
}

func NewAuthService(repo repository.AdminRepository, rdb *redis.Client, opts AuthOptions) AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &authService{repo: repo, rdb: rdb, opts: opts}
}

var errInvalidCredentials = apperror.Unauthorized("Email ou mot de passe incorrect")

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if s.opts.LoginRateLimit > 0 {
		ttl, err := ratelimit.TTL(ctx, s.rdb, email, loginAction)
		if err != nil {
			log.Printf("Failed to read login rate limit for %s: %v", email, err)
		} else if ttl > 0 {
			return nil, apperror.New(http.StatusTooManyRequests, "Trop de tentatives, réessayez plus tard", apperror.ErrRateLimitExceeded)
		}
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(ctx, email)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, errInvalidCredentials
	}

	if !admin.Active {
		return nil, apperror.Unauthorized("Compte administrateur désactivé")
	}

	token, expiresAt, err := middleware.IssueToken(s.opts.Secret, admin, s.opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	browser := describeClient(input.UserAgent)
	log.Printf("Admin %s logged in from %s", admin.Email, browser)
	s.countLogin(input.UserAgent)

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		log.Printf("Failed to record last login for admin %s: %v", admin.ID, err)
	} else {
		admin.LastLoginAt = &now
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		Admin:       admin,
	}, nil
}

func (s *authService) countLogin(userAgent string) {
	name, _ := useragent.New(userAgent).Browser()
	s.opts.Metrics.IncrementAdminLogins(name)
}

// describeClient turns a User-Agent header into "Browser version (OS)".
func describeClient(userAgent string) string {
	if userAgent == "" {
		return "unknown client"
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	client := strings.TrimSpace(name + " " + version)
	if os := ua.OS(); os != "" {
		client += " (" + os + ")"
	}
	if ua.Mobile() {
		client += " mobile"
	}
	return client
}

// recordFailure locks further attempts for this email during the configured window.
func (s *authService) recordFailure(ctx context.Context, email string) {
	s.opts.Metrics.IncrementAdminLoginFailures()
	if s.opts.LoginRateLimit <= 0 {
		return
	}
	if _, err := ratelimit.CheckAndSet(ctx, s.rdb, email, loginAction, s.opts.LoginRateLimit); err != nil {
		log.Printf("Failed to record login failure for %s: %v", email, err)
	}
}

func (s *authService) Me(ctx context.Context, admin *entity.Admin) (*entity.Admin, error) {
	fresh, err := s.repo.FindByID(ctx, admin.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Administrateur introuvable")
		}
		return nil, err
	}
	return fresh, nil
}

func (s *authService) ChangePassword(ctx context.Context, admin *entity.Admin, input dto.ChangePasswordInput) error {
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return apperror.Validation("Mot de passe actuel incorrect")
	}
	if input.CurrentPassword == input.NewPassword {
		return apperror.Validation("Le nouveau mot de passe doit être différent de l'ancien")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin.PasswordHash = string(hashed)
	return s.repo.Update(ctx, admin)
}
