package handler

import (
	"log"
	"net/http"
	"strings"

	"gabconcours.ga/backend/internal/modules/notification/dto"
	notification "gabconcours.ga/backend/internal/modules/notification/service"
	"gabconcours.ga/backend/pkg/apperror"
	"gabconcours.ga/backend/pkg/response"
	"gabconcours.ga/backend/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type NotificationHandler struct {
	service     notification.NotificationService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

// NewNotificationHandler accepts websocket upgrades only from allowedOrigins; an empty list allows any origin.
func NewNotificationHandler(service notification.NotificationService, redisClient *redis.Client, allowedOrigins []string) *NotificationHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimSuffix(o, "/")] = true
	}

	return &NotificationHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

func (h *NotificationHandler) ListForCandidate(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, apperror.Validation("Paramètres invalides", validator.FormatValidationErrors(err)...))
		return
	}

	res, err := h.service.ListForCandidate(c.Request.Context(), c.Param("nupcan"), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, res, "")
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.Validation("Identifiant invalide"))
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Notification marquée comme lue")
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(c.Request.Context(), c.Param("nupcan")); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.OK(c, nil, "Notifications marquées comme lues")
}

// Stream forwards the candidate's live notifications over a websocket.
func (h *NotificationHandler) Stream(c *gin.Context) {
	nupcan := strings.TrimSpace(c.Query("nupcan"))
	if nupcan == "" {
		response.ResponseError(c, apperror.Validation("NUPCAN requis"))
		return
	}
	if h.redisClient == nil {
		response.Fail(c, http.StatusServiceUnavailable, "Notifications en direct indisponibles")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, notification.CandidateChannel(nupcan))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}
	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
