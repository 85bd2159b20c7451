// Package client is the Go SDK for a soundroom server: it owns one logical
// room membership across possibly many underlying websocket connections.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is the only wire message shape, identical in both directions.
type Event struct {
	Type     int    `json:"type"`
	Nickname string `json:"nickname"`
}

// State of the session's transport lifecycle. Closed is terminal.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	ErrNotOpen          = errors.New("session not open")
	ErrRetriesExhausted = errors.New("reconnect retries exhausted")
)

// DefaultRetryDelay is the constant pause before a reconnect attempt.
const DefaultRetryDelay = 2 * time.Second

// Transport is the subset of a websocket connection the session drives.
// *websocket.Conn satisfies it.
type Transport interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type DialFunc func(ctx context.Context, url string) (Transport, error)

func defaultDial(ctx context.Context, u string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	return conn, err
}

type Options struct {
	// BaseURL of the server, e.g. "ws://localhost:3000".
	BaseURL  string
	RoomID   string
	Nickname string

	// RetryDelay between reconnect attempts; constant, not exponential.
	// Defaults to DefaultRetryDelay.
	RetryDelay time.Duration
	// MaxRetries caps consecutive failed reconnect attempts per outage.
	// Zero means retry indefinitely, which matches the original client and
	// will spin forever against a reclaimed room; set a cap if that matters.
	MaxRetries int

	// OnEvent is invoked for each decoded incoming event.
	OnEvent func(Event)
	// OnState is invoked on every state transition. Must not call back
	// into the session.
	OnState func(State)

	// Dial overrides the websocket dialer; used in tests.
	Dial DialFunc
}

// Session is one client's logical membership in a room. Reconnects open new
// transport connections but the session identity (ID) is stable for its life.
type Session struct {
	ID string

	opts Options
	url  string

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	conn       Transport
	retryTimer *time.Timer
	retries    int
	bo         *backoff.ConstantBackOff
	err        error
}

func NewSession(opts Options) (*Session, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url required")
	}
	if opts.RoomID == "" {
		return nil, errors.New("room id required")
	}
	if opts.Nickname == "" {
		return nil, errors.New("nickname required")
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Dial == nil {
		opts.Dial = defaultDial
	}
	u := fmt.Sprintf("%s/ws/%s?nickname=%s",
		strings.TrimRight(opts.BaseURL, "/"), opts.RoomID, url.QueryEscape(opts.Nickname))
	return &Session{
		ID:    uuid.NewString(),
		opts:  opts,
		url:   u,
		state: StateConnecting,
		bo:    backoff.NewConstantBackOff(opts.RetryDelay),
	}, nil
}

// Join opens the first transport connection. A dial failure here is treated
// like any other transport loss: the session moves to Reconnecting and
// retries on the fixed delay. Join only fails if the session was already
// closed.
func (s *Session) Join(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.ctx != nil {
		s.mu.Unlock()
		return errors.New("session already joined")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.attempt()
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err reports why the session closed, if it closed abnormally.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Send pushes one sound trigger. If the transport is not open the event is
// simply not sent; there is no queueing of missed events.
func (s *Session) Send(soundType int) error {
	s.mu.Lock()
	if s.state != StateOpen || s.conn == nil {
		s.mu.Unlock()
		return ErrNotOpen
	}
	conn := s.conn
	s.mu.Unlock()

	data, err := json.Marshal(Event{Type: soundType, Nickname: s.opts.Nickname})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Leave closes the session. Pending reconnect timers are canceled before
// Leave returns; no further connection attempts happen. Closed is terminal.
func (s *Session) Leave() {
	s.mu.Lock()
	notify := s.closeLocked(nil)
	s.mu.Unlock()
	notify()
}

// attempt dials one new transport connection.
func (s *Session) attempt() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	notify := s.setStateLocked(StateConnecting)
	ctx := s.ctx
	s.mu.Unlock()
	notify()

	conn, err := s.opts.Dial(ctx, s.url)

	s.mu.Lock()
	if s.state == StateClosed {
		// Left while dialing; the fresh connection is unwanted.
		s.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "client").Str("session", s.ID).Msg("dial failed")
		notify = s.lossLocked()
		s.mu.Unlock()
		notify()
		return
	}
	s.conn = conn
	s.retries = 0
	notify = s.setStateLocked(StateOpen)
	s.mu.Unlock()
	notify()

	go s.readLoop(conn)
}

func (s *Session) readLoop(conn Transport) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.transportLost(conn)
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Malformed payloads never change session state.
			log.Warn().Err(err).Str("module", "client").Str("session", s.ID).Msg("malformed payload dropped")
			continue
		}
		if cb := s.opts.OnEvent; cb != nil {
			cb(ev)
		}
	}
}

func (s *Session) transportLost(conn Transport) {
	s.mu.Lock()
	if s.conn != conn {
		// A stale read loop from a connection already replaced.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	notify := s.lossLocked()
	s.mu.Unlock()
	notify()
}

// lossLocked moves to Reconnecting and arms exactly one retry timer.
// Two live timers for one session is a defect; the nil check is the guard.
func (s *Session) lossLocked() func() {
	if s.retryTimer != nil {
		return s.setStateLocked(StateReconnecting)
	}
	if s.opts.MaxRetries > 0 && s.retries >= s.opts.MaxRetries {
		return s.closeLocked(ErrRetriesExhausted)
	}
	s.retries++
	notify := s.setStateLocked(StateReconnecting)
	s.retryTimer = time.AfterFunc(s.bo.NextBackOff(), func() {
		s.mu.Lock()
		s.retryTimer = nil
		s.mu.Unlock()
		s.attempt()
	})
	return notify
}

// closeLocked enters the terminal state, cancelling any pending retry.
func (s *Session) closeLocked(cause error) func() {
	if s.state == StateClosed {
		return func() {}
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.err = cause
	return s.setStateLocked(StateClosed)
}

func (s *Session) setStateLocked(st State) func() {
	if s.state == st {
		return func() {}
	}
	s.state = st
	cb := s.opts.OnState
	if cb == nil {
		return func() {}
	}
	return func() { cb(st) }
}
