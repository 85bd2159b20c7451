package core

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/domain"
	"github.com/soundroom/soundroom/internal/metrics"
)

// RoomResolver is the slice of the lifecycle manager the router needs.
type RoomResolver interface {
	GetRoom(id domain.RoomID) (RoomService, error)
}

// Router fans one inbound event out to every other live connection in the
// origin's room. Fire-and-forget: no ordering across events, no replay.
type Router struct {
	Rooms RoomResolver
}

func NewRouter(rooms RoomResolver) *Router {
	return &Router{Rooms: rooms}
}

// Route encodes the event once and delivers it at most once per sibling
// connection. A vanished room is a silent no-op, not an error; the room may
// have been reclaimed between the origin's join and this trigger.
func (rt *Router) Route(origin ConnID, roomID domain.RoomID, ev domain.SoundEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "core.router").Msg("encode event")
		return
	}

	room, err := rt.Rooms.GetRoom(roomID)
	if err != nil {
		if !errors.Is(err, domain.ErrRoomNotFound) {
			log.Error().Err(err).Str("module", "core.router").Str("room", string(roomID)).Msg("resolve room")
		}
		return
	}

	metrics.EventsRouted.Inc()
	res := room.Broadcast(origin, Frame(data))
	metrics.Deliveries.Add(float64(res.SentTo))
	metrics.DeliveriesDropped.Add(float64(len(res.Dropped)))
	log.Debug().Str("module", "core.router").Str("room", string(roomID)).Int("type", ev.Type).Int("sent_to", res.SentTo).Msg("event routed")
}
