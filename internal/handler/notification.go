package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"corpcab/internal/domain"
	"corpcab/internal/middleware"
	"corpcab/internal/repository"
)

const notificationListLimit = 50

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	repo repository.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// NotificationResponse is the HTTP representation of a notification.
type NotificationResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	RelatedRideID string `json:"related_ride_id,omitempty"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.repo.ListByUser(c.Request.Context(), c.GetString(middleware.ContextUserID), notificationListLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse(n))
	}
	respondJSON(c, http.StatusOK, out)
}

// MarkRead handles POST /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.repo.MarkRead(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	err := h.repo.MarkAllRead(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func notificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		RelatedRideID: n.RelatedRideID,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
