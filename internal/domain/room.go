// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxRoomNameLen = 36

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrRoomNotFound    = errors.New("room not found")
)

type (
	RoomName string
	RoomID   string
)

type Room struct {
	ID   RoomID   `json:"id"`
	Name RoomName `json:"name"`
}

// NewRoom validates the display name and assigns a fresh immutable id.
func NewRoom(name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return nil, ErrRoomNameTooLong
	}
	return &Room{ID: RoomID(uuid.NewString()), Name: RoomName(name)}, nil
}
