package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/app"
	"github.com/soundroom/soundroom/internal/core"
	"github.com/soundroom/soundroom/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Lifecycle  *app.Lifecycle
	Registry   *app.Registry
	Router     *core.Router
	Limiter    *app.TriggerLimiter
	ReadLimit  int64
	PingPeriod time.Duration
}

// HandleWS joins one websocket connection to a room.
//
// Join is two-phase: the room is resolved before the upgrade so a bad id
// gets a plain 404 instead of a dangling socket, and membership is only
// registered once the transport is actually open. A connection is never
// left half-joined.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomID"))
	nickname := strings.TrimSpace(c.Query("nickname"))
	if nickname == "" {
		nickname = "guest"
	}
	if len(nickname) > domain.MaxNicknameLen {
		nickname = nickname[:domain.MaxNicknameLen]
	}

	if _, err := ctl.Lifecycle.GetRoom(roomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		sock.SetReadLimit(ctl.ReadLimit)
	}

	conn := newWsConn(sock)
	cid := core.ConnID(uuid.NewString())
	sess := core.NewMemberSession(nickname, conn)

	if err := ctl.Lifecycle.AddMember(roomID, cid, sess); err != nil {
		// Room reclaimed between lookup and upgrade.
		log.Warn().Err(err).Str("module", "adapters.ws").Str("room", string(roomID)).Msg("join lost race with reclamation")
		conn.Close()
		return
	}

	connCtx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(cid, roomID, sess, cancel)

	// Rate-limit on the stable client token when the browser carries one,
	// so a reconnect does not reset the window.
	limKey := c.GetString("client_token")
	if limKey == "" {
		limKey = string(cid)
	}

	log.Info().Str("module", "adapters.ws").Str("cid", string(cid)).Str("room", string(roomID)).Str("nickname", nickname).Msg("connection joined")

	go ctl.writePump(connCtx, cid, conn)
	go ctl.readPump(connCtx, cid, roomID, limKey, conn, cancel)
}
