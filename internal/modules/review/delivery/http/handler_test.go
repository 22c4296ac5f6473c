package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gabconcours.ga/backend/internal/entity"
	"gabconcours.ga/backend/internal/middleware"
	"gabconcours.ga/backend/internal/modules/review/dto"
	review "gabconcours.ga/backend/internal/modules/review/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopedReview enforces only the institution rule; the rest of the service is exercised in its own package.
type scopedReview struct {
	review.ReviewService
	owner uuid.UUID
	calls int
}

func (s *scopedReview) ValidateDocument(_ context.Context, admin *entity.Admin, id uuid.UUID, req dto.ValidateDocumentRequest) (*entity.Document, error) {
	s.calls++
	if !admin.CanAccessInstitution(s.owner) {
		return nil, apperror.Forbidden("Accès non autorisé à cet établissement")
	}
	return &entity.Document{ID: id, Status: req.Status}, nil
}

func newRouter(admin *entity.Admin, svc review.ReviewService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAdmin, admin)
		c.Next()
	})
	h := NewReviewHandler(svc)
	r.POST("/api/admin/documents/:id/validate", h.ValidateDocument)
	return r
}

func post(t *testing.T, r *gin.Engine, path string, body any) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestValidateDocument_CrossInstitution(t *testing.T) {
	owner, other := uuid.New(), uuid.New()
	svc := &scopedReview{owner: owner}
	path := "/api/admin/documents/" + uuid.NewString() + "/validate"

	w, env := post(t, newRouter(&entity.Admin{Role: entity.RoleInstitutionAdmin, InstitutionID: &other}, svc), path, map[string]string{"status": "valide"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)

	w, env = post(t, newRouter(&entity.Admin{Role: entity.RoleInstitutionAdmin, InstitutionID: &owner}, svc), path, map[string]string{"status": "valide"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Document validé", env.Message)
}

func TestValidateDocument_ResetToPending(t *testing.T) {
	owner := uuid.New()
	svc := &scopedReview{owner: owner}
	r := newRouter(&entity.Admin{Role: entity.RoleInstitutionAdmin, InstitutionID: &owner}, svc)

	w, env := post(t, r, "/api/admin/documents/"+uuid.NewString()+"/validate", map[string]string{"status": "en_attente"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Document remis en attente", env.Message)
	assert.Equal(t, 1, svc.calls)
}

func TestValidateDocument_BadInput(t *testing.T) {
	svc := &scopedReview{owner: uuid.New()}
	r := newRouter(&entity.Admin{Role: entity.RoleSuperAdmin}, svc)

	w, _ := post(t, r, "/api/admin/documents/not-a-uuid/validate", map[string]string{"status": "valide"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := post(t, r, "/api/admin/documents/"+uuid.NewString()+"/validate", map[string]string{"status": "approuve"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Errors)
	assert.Zero(t, svc.calls)
}
