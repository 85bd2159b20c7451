package domain

import "errors"

const MaxNicknameLen = 36

var (
	ErrBadSoundType    = errors.New("sound type must be positive")
	ErrNicknameTooLong = errors.New("nickname too long")
)

// SoundEvent is the only wire message shape, identical in both directions.
// It is never persisted; it exists on the wire and during fan-out only.
type SoundEvent struct {
	Type     int    `json:"type"`
	Nickname string `json:"nickname"`
}

// Validate rejects anything that decoded but is not a usable cue trigger.
// The catalog itself is a client concern; the server only checks the id
// is a positive integer and passes it through opaquely.
func (e SoundEvent) Validate() error {
	if e.Type <= 0 {
		return ErrBadSoundType
	}
	if len(e.Nickname) > MaxNicknameLen {
		return ErrNicknameTooLong
	}
	return nil
}
