package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parley-chat/server/internal/websocket"
	"github.com/parley-chat/server/pkg/wire"
)

// PushHandler exposes the fan-out layer to trusted backend services. A push
// delivers one event to every live primary connection of each target user
// and queues a notification for the targets that had none.
type PushHandler struct {
	dispatcher *websocket.Dispatcher
	offline    *websocket.OfflineQueue
}

func NewPushHandler(dispatcher *websocket.Dispatcher, offline *websocket.OfflineQueue) *PushHandler {
	return &PushHandler{
		dispatcher: dispatcher,
		offline:    offline,
	}
}

// Push handles POST /v1/push
func (h *PushHandler) Push(c *gin.Context) {
	var req wire.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	receipts := h.dispatcher.SendToUsers(req.Event, req.Payload, req.UserIDs)
	h.offline.QueueMissed(c.Request.Context(), receipts, req.Event, req.Payload)

	response := make([]wire.Receipt, len(receipts))
	for i, receipt := range receipts {
		response[i] = wire.Receipt{
			UserID:       receipt.UserID,
			Reachability: string(receipt.Reachability),
		}
	}

	c.JSON(http.StatusOK, wire.PushResponse{Receipts: response})
}
