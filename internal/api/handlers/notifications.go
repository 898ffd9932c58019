package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parley-chat/server/internal/api/middleware"
	"github.com/parley-chat/server/internal/store"
	"github.com/parley-chat/server/pkg/wire"
)

// NotificationHandler serves the queued-notification fallback over REST:
// clients that reconnect (or poll instead of connecting) list what they
// missed and acknowledge it away.
type NotificationHandler struct {
	db      *sql.DB
	queries *store.Queries
}

func NewNotificationHandler(db *sql.DB) *NotificationHandler {
	return &NotificationHandler{
		db:      db,
		queries: store.New(db),
	}
}

// MarkSeenRequest identifies the newest queued record to acknowledge.
type MarkSeenRequest struct {
	UpTo string `json:"upTo" binding:"required"`
}

// ListNotifications handles GET /v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	pending, err := h.queries.ListPendingNotifications(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	response := make([]wire.Notification, len(pending))
	for i, n := range pending {
		response[i] = wire.Notification{
			ID:        n.ID,
			Event:     n.Event,
			Payload:   json.RawMessage(n.Payload),
			CreatedAt: n.CreatedAt.UnixMilli(),
		}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": response})
}

// MarkSeen handles POST /v1/notifications/seen
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req MarkSeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.queries.DeleteNotificationsUpTo(c.Request.Context(), userID, req.UpTo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications seen"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}
