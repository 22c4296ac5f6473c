package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gabconcours.ga/backend/internal/entity"
	adminRepo "gabconcours.ga/backend/internal/modules/admin/repository"
	"gabconcours.ga/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextAdminID = "admin_id"
	ContextAdmin   = "admin"
)

// AdminClaims is the payload of an admin access token.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	adminRepo adminRepo.AdminRepository
	secret    []byte
}

func NewAuthMiddleware(adminRepo adminRepo.AdminRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		adminRepo: adminRepo,
		secret:    []byte(secret),
	}
}

// IssueToken signs a token for admin valid for ttl.
func IssueToken(secret string, admin *entity.Admin, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := AdminClaims{
		Role: admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *AuthMiddleware) parse(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// RequireAuth verifies the bearer token and reloads the admin row on every request,
// so a deactivated account is locked out immediately.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			response.Fail(c, http.StatusUnauthorized, "Token d'authentification requis")
			c.Abort()
			return
		}

		claims, err := m.parse(tokenString)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Token invalide ou expiré")
			c.Abort()
			return
		}

		adminID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Token invalide ou expiré")
			c.Abort()
			return
		}

		admin, err := m.adminRepo.FindByID(c.Request.Context(), adminID)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Administrateur introuvable")
			c.Abort()
			return
		}

		if !admin.Active {
			response.Fail(c, http.StatusUnauthorized, "Compte administrateur désactivé")
			c.Abort()
			return
		}

		c.Set(ContextAdminID, admin.ID.String())
		c.Set(ContextAdmin, admin)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := CurrentAdmin(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Authentification requise")
			c.Abort()
			return
		}

		if !admin.IsSuperAdmin() {
			response.Fail(c, http.StatusForbidden, "Accès réservé au super administrateur")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentAdmin returns the admin loaded by RequireAuth.
func CurrentAdmin(c *gin.Context) (*entity.Admin, bool) {
	value, exists := c.Get(ContextAdmin)
	if !exists {
		return nil, false
	}
	admin, ok := value.(*entity.Admin)
	return admin, ok
}
