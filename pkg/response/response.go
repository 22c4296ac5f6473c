package response

import (
	"errors"
	"log"
	"net/http"
	"sync/atomic"

	"gabconcours.ga/backend/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// Envelope is the uniform body of every JSON response.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

var debug atomic.Bool

// SetDebug exposes internal error details in 500 responses. Only enabled in development.
func SetDebug(enabled bool) {
	debug.Store(enabled)
}

func OK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	body := Envelope{Success: false}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Errors = appErr.Details
	}

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body.Message = "Erreur serveur"
		body.Errors = nil
		if debug.Load() {
			body.Errors = []string{err.Error()}
		}
	}

	if body.Message == "" {
		body.Message = defaultMessage(code)
	}

	c.JSON(code, body)
}

// Fail writes an error envelope without going through the error mapper.
func Fail(c *gin.Context, code int, message string, details ...string) {
	c.JSON(code, Envelope{Success: false, Message: message, Errors: details})
}

func defaultMessage(code int) string {
	switch code {
	case http.StatusNotFound:
		return "Ressource introuvable"
	case http.StatusUnauthorized:
		return "Authentification requise"
	case http.StatusForbidden:
		return "Accès non autorisé"
	case http.StatusBadRequest:
		return "Requête invalide"
	case http.StatusConflict:
		return "Ressource déjà existante"
	case http.StatusTooManyRequests:
		return "Trop de tentatives, réessayez plus tard"
	default:
		return "Erreur serveur"
	}
}
