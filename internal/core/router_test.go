package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroom/soundroom/internal/domain"
)

type fakeResolver struct {
	rooms map[domain.RoomID]RoomService
}

func (f *fakeResolver) GetRoom(id domain.RoomID) (RoomService, error) {
	if svc, ok := f.rooms[id]; ok {
		return svc, nil
	}
	return nil, domain.ErrRoomNotFound
}

func TestRouteFansOutToSiblings(t *testing.T) {
	room, err := domain.NewRoom("Party")
	require.NoError(t, err)
	svc := NewRoomService(room)

	origin, sibling := &fakeConn{}, &fakeConn{}
	svc.AddMember("origin", NewMemberSession("A", origin))
	svc.AddMember("sibling", NewMemberSession("B", sibling))

	rt := NewRouter(&fakeResolver{rooms: map[domain.RoomID]RoomService{room.ID: svc}})
	rt.Route("origin", room.ID, domain.SoundEvent{Type: 3, Nickname: "A"})

	require.Len(t, sibling.received(), 1, "sibling gets the event exactly once")
	assert.Empty(t, origin.received(), "origin gets no echo")

	var got domain.SoundEvent
	require.NoError(t, json.Unmarshal(sibling.received()[0], &got))
	assert.Equal(t, domain.SoundEvent{Type: 3, Nickname: "A"}, got)
}

func TestRouteToMissingRoomIsSilentNoop(t *testing.T) {
	rt := NewRouter(&fakeResolver{rooms: map[domain.RoomID]RoomService{}})
	assert.NotPanics(t, func() {
		rt.Route("origin", "gone", domain.SoundEvent{Type: 1, Nickname: "A"})
	})
}
