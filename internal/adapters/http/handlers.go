package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/app"
	"github.com/soundroom/soundroom/internal/domain"
)

type RoomHandler struct {
	Lifecycle *app.Lifecycle
}

// CreateRoom handles POST /room?name=<string>.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	room, err := h.Lifecycle.CreateRoom(c.Query("name"))
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("create room rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GetRoom handles GET /room/:roomID.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	svc, err := h.Lifecycle.GetRoom(domain.RoomID(c.Param("roomID")))
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, svc.Room())
}

// ListRooms handles GET /rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Lifecycle.List())
}
