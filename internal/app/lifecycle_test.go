package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundroom/soundroom/internal/core"
	"github.com/soundroom/soundroom/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func member(nick string) core.MemberSession {
	return core.NewMemberSession(nick, nopConn{})
}

func TestCreateAndGetRoom(t *testing.T) {
	lc := NewLifecycle(time.Minute)

	room, err := lc.CreateRoom("Party")
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)

	svc, err := lc.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, svc.Room().ID)
	assert.Equal(t, domain.RoomName("Party"), svc.Room().Name)
	assert.Equal(t, 0, svc.MemberCount(), "an empty room is a valid lookup result")
}

func TestCreateRoomInvalidInput(t *testing.T) {
	lc := NewLifecycle(time.Minute)
	_, err := lc.CreateRoom("   ")
	assert.ErrorIs(t, err, domain.ErrRoomNameEmpty)
}

func TestGetRoomNotFound(t *testing.T) {
	lc := NewLifecycle(time.Minute)
	_, err := lc.GetRoom("no-such-room")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestAddMemberToMissingRoom(t *testing.T) {
	lc := NewLifecycle(time.Minute)
	err := lc.AddMember("no-such-room", "c1", member("A"))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRemoveMemberIdempotent(t *testing.T) {
	lc := NewLifecycle(time.Minute)
	room, err := lc.CreateRoom("Party")
	require.NoError(t, err)
	require.NoError(t, lc.AddMember(room.ID, "c1", member("A")))

	lc.RemoveMember(room.ID, "c1")
	lc.RemoveMember(room.ID, "c1")
	lc.RemoveMember("no-such-room", "c1")

	svc, err := lc.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.MemberCount())
}

// Reclamation policy: an empty room is retained for the idle window and then
// reclaimed; occupied rooms are pinned; a rejoin inside the window re-pins.
func TestReclamationPolicy(t *testing.T) {
	const ttl = 100 * time.Millisecond
	lc := NewLifecycle(ttl)

	t.Run("unused room expires after the window", func(t *testing.T) {
		room, err := lc.CreateRoom("Lonely")
		require.NoError(t, err)

		_, err = lc.GetRoom(room.ID)
		require.NoError(t, err, "resolvable inside the window")

		time.Sleep(3 * ttl)
		_, err = lc.GetRoom(room.ID)
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("occupied room never expires", func(t *testing.T) {
		room, err := lc.CreateRoom("Busy")
		require.NoError(t, err)
		require.NoError(t, lc.AddMember(room.ID, "c1", member("A")))

		time.Sleep(3 * ttl)
		_, err = lc.GetRoom(room.ID)
		assert.NoError(t, err)
	})

	t.Run("emptied room survives the window then goes away", func(t *testing.T) {
		room, err := lc.CreateRoom("Churny")
		require.NoError(t, err)
		require.NoError(t, lc.AddMember(room.ID, "c1", member("A")))

		lc.RemoveMember(room.ID, "c1")
		_, err = lc.GetRoom(room.ID)
		require.NoError(t, err, "still resolvable right after emptying")

		time.Sleep(3 * ttl)
		_, err = lc.GetRoom(room.ID)
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})

	t.Run("rejoin inside the window re-pins the room", func(t *testing.T) {
		room, err := lc.CreateRoom("Comeback")
		require.NoError(t, err)
		require.NoError(t, lc.AddMember(room.ID, "c1", member("A")))
		lc.RemoveMember(room.ID, "c1")

		time.Sleep(ttl / 4)
		require.NoError(t, lc.AddMember(room.ID, "c2", member("A")), "reconnect within the grace window")

		time.Sleep(3 * ttl)
		_, err = lc.GetRoom(room.ID)
		assert.NoError(t, err)
	})
}

func TestList(t *testing.T) {
	lc := NewLifecycle(time.Minute)
	room, err := lc.CreateRoom("Party")
	require.NoError(t, err)
	require.NoError(t, lc.AddMember(room.ID, "c1", member("A")))

	infos := lc.List()
	require.Len(t, infos, 1)
	assert.Equal(t, room.ID, infos[0].ID)
	assert.Equal(t, 1, infos[0].MemberCount)
}
