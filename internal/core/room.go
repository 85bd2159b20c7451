package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/soundroom/soundroom/internal/domain"
)

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(cid ConnID, ms MemberSession)
	RemoveMember(cid ConnID)
	Broadcast(from ConnID, data Frame) PublishResult
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	mu    sync.RWMutex
	conns map[ConnID]MemberSession
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		conns: make(map[ConnID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *roomImpl) AddMember(cid ConnID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = ms
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("cid", string(cid)).Str("nickname", ms.Nickname()).Msg("member added")
}

func (r *roomImpl) RemoveMember(cid ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[cid]; !ok {
		return
	}
	delete(r.conns, cid)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("cid", string(cid)).Msg("member removed")
}

// Broadcast fans data out to every live connection except the literal origin.
// A member that fails TrySend is skipped, never waited on; each connection
// sees the frame at most once per call.
func (r *roomImpl) Broadcast(from ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for cid, m := range r.conns {
		if cid == from {
			continue
		}
		if err := m.Conn().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, cid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.conns))
	for _, ms := range r.conns {
		out = append(out, MemberDTO{Nickname: ms.Nickname()})
	}
	return out
}
