package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/core"
	"github.com/soundroom/soundroom/internal/domain"
	"github.com/soundroom/soundroom/internal/metrics"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, cid core.ConnID, c *WsConn) {
	pingPeriod := ctl.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Unblocks the read pump too; cleanup happens there.
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cid core.ConnID, roomID domain.RoomID, limKey string, c *WsConn, cancel context.CancelFunc) {
	defer func() {
		ctl.Lifecycle.RemoveMember(roomID, cid)
		ctl.Registry.Unbind(cid)
		c.Close()
		cancel()
		log.Info().Str("module", "adapters.ws").Str("cid", string(cid)).Msg("readPump closing")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("readPump read error")
				return
			}
			ctl.handleInbound(cid, roomID, limKey, data)
		}
	}
}

// handleInbound decodes one wire payload and hands it to the router.
// Malformed payloads are dropped and logged; they never close the channel.
func (ctl *Controller) handleInbound(cid core.ConnID, roomID domain.RoomID, limKey string, data []byte) {
	var ev domain.SoundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		metrics.EventsMalformed.Inc()
		log.Warn().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("malformed payload dropped")
		return
	}
	if err := ev.Validate(); err != nil {
		metrics.EventsMalformed.Inc()
		log.Warn().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("invalid event dropped")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(limKey) {
		metrics.EventsThrottled.Inc()
		log.Warn().Str("module", "adapters.ws").Str("cid", string(cid)).Int("type", ev.Type).Msg("trigger throttled")
		return
	}
	ctl.Router.Route(cid, roomID, ev)
}
