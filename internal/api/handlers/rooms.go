package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parley-chat/server/internal/api/middleware"
	"github.com/parley-chat/server/internal/store"
)

// RoomHandler manages chat rooms and their membership. Room membership is
// the persistent counterpart of the live broadcast groups: message fan-out
// resolves a room to member user ids here, then delivers through the
// membership index.
type RoomHandler struct {
	db      *sql.DB
	queries *store.Queries
}

func NewRoomHandler(db *sql.DB) *RoomHandler {
	return &RoomHandler{
		db:      db,
		queries: store.New(db),
	}
}

// RoomResponse represents a room in API responses
type RoomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// CreateRoomRequest represents the request to create a room
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest represents the request to add a room member
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateRoom handles POST /v1/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.queries.CreateRoom(c.Request.Context(), store.CreateRoomParams{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	// The creator is always a member.
	err = h.queries.AddRoomMember(c.Request.Context(), store.AddRoomMemberParams{
		RoomID: room.ID,
		UserID: userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add creator to room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt.UnixMilli(),
	}})
}

// AddMember handles POST /v1/rooms/:id/members
func (h *RoomHandler) AddMember(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	roomID := c.Param("id")

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Only members may add members.
	isMember, err := h.queries.IsRoomMember(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	err = h.queries.AddRoomMember(c.Request.Context(), store.AddRoomMemberParams{
		RoomID: roomID,
		UserID: req.UserID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// ListMembers handles GET /v1/rooms/:id/members
func (h *RoomHandler) ListMembers(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	roomID := c.Param("id")

	isMember, err := h.queries.IsRoomMember(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	memberIDs, err := h.queries.GetRoomMemberIDs(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	if memberIDs == nil {
		memberIDs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"members": memberIDs})
}
