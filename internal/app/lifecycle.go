package app

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/core"
	"github.com/soundroom/soundroom/internal/domain"
	"github.com/soundroom/soundroom/internal/metrics"
)

// DefaultIdleTTL is how long an empty room survives before reclamation.
// The client retries every two seconds on transport loss, so a minute of
// grace covers many reconnect cycles.
const DefaultIdleTTL = time.Minute

type RoomInfo struct {
	ID          domain.RoomID   `json:"id"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

// Lifecycle owns room creation, lookup and reclamation.
//
// Reclamation policy: a room with zero members is retained for idleTTL and
// then reclaimed. Rooms are pinned (no expiration) while occupied; emptying
// a room restarts the idle clock. A newly created room starts on the clock
// until its first member arrives. Lookups treat an expired room as absent
// even before the cache janitor collects it.
type Lifecycle struct {
	mu      sync.Mutex
	rooms   *gocache.Cache
	idleTTL time.Duration
}

func NewLifecycle(idleTTL time.Duration) *Lifecycle {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	c := gocache.New(gocache.NoExpiration, idleTTL)
	c.OnEvicted(func(id string, _ any) {
		metrics.RoomsActive.Dec()
		metrics.RoomsReclaimed.Inc()
		log.Info().Str("module", "app.lifecycle").Str("room", id).Msg("room reclaimed")
	})
	return &Lifecycle{rooms: c, idleTTL: idleTTL}
}

func (l *Lifecycle) CreateRoom(name string) (*domain.Room, error) {
	room, err := domain.NewRoom(name)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms.Set(string(room.ID), core.NewRoomService(room), l.idleTTL)
	metrics.RoomsActive.Inc()
	metrics.RoomsCreated.Inc()
	log.Info().Str("module", "app.lifecycle").Str("room", string(room.ID)).Str("name", string(room.Name)).Msg("room created")
	return room, nil
}

func (l *Lifecycle) GetRoom(id domain.RoomID) (core.RoomService, error) {
	v, ok := l.rooms.Get(string(id))
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return v.(core.RoomService), nil
}

// AddMember registers a live connection and pins the room open.
func (l *Lifecycle) AddMember(id domain.RoomID, cid core.ConnID, ms core.MemberSession) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	svc, err := l.GetRoom(id)
	if err != nil {
		return err
	}
	svc.AddMember(cid, ms)
	l.rooms.Set(string(id), svc, gocache.NoExpiration)
	return nil
}

// RemoveMember is idempotent: unknown rooms and absent members are no-ops.
// Emptying a room puts it back on the idle clock.
func (l *Lifecycle) RemoveMember(id domain.RoomID, cid core.ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	svc, err := l.GetRoom(id)
	if err != nil {
		return
	}
	svc.RemoveMember(cid)
	if svc.MemberCount() == 0 {
		l.rooms.Set(string(id), svc, l.idleTTL)
		log.Info().Str("module", "app.lifecycle").Str("room", string(id)).Dur("idle_ttl", l.idleTTL).Msg("room empty, idle clock started")
	}
}

func (l *Lifecycle) List() []RoomInfo {
	items := l.rooms.Items()
	out := make([]RoomInfo, 0, len(items))
	for _, item := range items {
		svc := item.Object.(core.RoomService)
		room := svc.Room()
		out = append(out, RoomInfo{ID: room.ID, Name: room.Name, MemberCount: svc.MemberCount()})
	}
	return out
}
