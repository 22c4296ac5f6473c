package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/middleware"
	adminRepo "gabconcours.ga/backend/internal/modules/admin/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type fakeAdmins struct {
	adminRepo.AdminRepository
	admins map[uuid.UUID]*entity.Admin
}

func (f *fakeAdmins) FindByID(_ context.Context, id uuid.UUID) (*entity.Admin, error) {
	if a, ok := f.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// newTestRouter registers the real route table; handlers are never reached by these requests.
func newTestRouter(admins ...*entity.Admin) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := &fakeAdmins{admins: map[uuid.UUID]*entity.Admin{}}
	for _, a := range admins {
		repo.admins[a.ID] = a
	}

	router := gin.New()
	registerRoutes(router, handlers{}, middleware.NewAuthMiddleware(repo, testSecret))
	return router
}

func bearer(t *testing.T, admin *entity.Admin) string {
	t.Helper()
	token, _, err := middleware.IssueToken(testSecret, admin, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouteTable(t *testing.T) {
	routes := map[string]bool{}
	for _, r := range newTestRouter().Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/candidats",
		"GET /api/candidats/nupcan/:nupcan",
		"GET /api/candidats/check-nupcan",
		"GET /api/concours/:id/filieres",
		"POST /api/participations",
		"GET /api/participations/numero/:numero",
		"POST /api/documents",
		"GET /api/documents/:id/download",
		"GET /api/dossiers/nupcan/:nupcan",
		"GET /api/dossiers/:nupcan",
		"POST /api/paiements",
		"GET /api/notifications/ws",
		"POST /api/admin/auth/login",
		"GET /api/admin/etablissement/:id/dossiers",
		"POST /api/admin/documents/:id/validate",
		"PUT /api/admin/paiements/:id/reject",
		"GET /api/admin/candidats/search",
		"GET /api/admin/statistics",
		"DELETE /api/admin/management/admins/:id",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/statistics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSuperAdminRoutes(t *testing.T) {
	institutionID := uuid.New()
	scoped := &entity.Admin{ID: uuid.New(), Role: entity.RoleInstitutionAdmin, InstitutionID: &institutionID, Active: true}
	inactive := &entity.Admin{ID: uuid.New(), Role: entity.RoleSuperAdmin, Active: false}
	router := newTestRouter(scoped, inactive)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/management/admins", nil)
	req.Header.Set("Authorization", bearer(t, scoped))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/concours/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearer(t, inactive))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
