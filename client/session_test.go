package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu    sync.Mutex
	wrote [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 8), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("use of closed connection")
	default:
	}
	f.mu.Lock()
	f.wrote = append(f.wrote, data)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// drop simulates unexpected transport loss (server side going away).
func (f *fakeConn) drop() { _ = f.Close() }

func (f *fakeConn) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.wrote...)
}

type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeConn
	attempts int
	fail     bool
}

func (d *fakeDialer) dial(context.Context, string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	if d.fail {
		return nil, errors.New("dial refused")
	}
	c := newFakeConn()
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

func (r *stateRecorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func newTestSession(t *testing.T, d *fakeDialer, opts Options) *Session {
	t.Helper()
	opts.BaseURL = "ws://test"
	opts.RoomID = "r1"
	if opts.Nickname == "" {
		opts.Nickname = "A"
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 25 * time.Millisecond
	}
	opts.Dial = d.dial
	s, err := NewSession(opts)
	require.NoError(t, err)
	t.Cleanup(s.Leave)
	return s
}

func TestJoinOpensSession(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSession(t, d, Options{})

	require.NoError(t, s.Join(context.Background()))
	assert.Equal(t, StateOpen, s.State())
	assert.Equal(t, 1, d.dials())
}

func TestSendEncodesWireShape(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSession(t, d, Options{Nickname: "A"})
	require.NoError(t, s.Join(context.Background()))

	require.NoError(t, s.Send(3))

	wrote := d.last().written()
	require.Len(t, wrote, 1)
	var ev Event
	require.NoError(t, json.Unmarshal(wrote[0], &ev))
	assert.Equal(t, Event{Type: 3, Nickname: "A"}, ev)
}

func TestSendWhenNotOpen(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSession(t, d, Options{})
	assert.ErrorIs(t, s.Send(1), ErrNotOpen, "before join")

	require.NoError(t, s.Join(context.Background()))
	s.Leave()
	assert.ErrorIs(t, s.Send(1), ErrNotOpen, "after leave")
}

func TestReceiveInvokesCallback(t *testing.T) {
	d := &fakeDialer{}
	events := make(chan Event, 1)
	s := newTestSession(t, d, Options{OnEvent: func(ev Event) { events <- ev }})
	require.NoError(t, s.Join(context.Background()))

	d.last().in <- []byte(`{"type":3,"nickname":"B"}`)

	select {
	case ev := <-events:
		assert.Equal(t, Event{Type: 3, Nickname: "B"}, ev)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestMalformedPayloadDoesNotChangeState(t *testing.T) {
	d := &fakeDialer{}
	events := make(chan Event, 1)
	s := newTestSession(t, d, Options{OnEvent: func(ev Event) { events <- ev }})
	require.NoError(t, s.Join(context.Background()))

	d.last().in <- []byte("garbage")
	d.last().in <- []byte(`{"type":2,"nickname":"B"}`)

	select {
	case ev := <-events:
		assert.Equal(t, 2, ev.Type, "session keeps reading after garbage")
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	assert.Equal(t, StateOpen, s.State())
}

// Transport loss while the room is still wanted: exactly one retry timer,
// then a fresh connection attempt after the fixed delay.
func TestReconnectAfterTransportLoss(t *testing.T) {
	d := &fakeDialer{}
	rec := &stateRecorder{}
	s := newTestSession(t, d, Options{OnState: rec.record, RetryDelay: 100 * time.Millisecond})
	require.NoError(t, s.Join(context.Background()))
	require.Equal(t, 1, d.dials())

	d.last().drop()

	require.Eventually(t, func() bool { return s.State() == StateReconnecting }, time.Second, time.Millisecond)
	assert.Equal(t, 1, d.dials(), "no dial before the backoff delay elapses")

	require.Eventually(t, func() bool { return s.State() == StateOpen }, time.Second, time.Millisecond)
	assert.Equal(t, 2, d.dials(), "exactly one retry attempt")

	assert.Equal(t, []State{StateOpen, StateReconnecting, StateConnecting, StateOpen}, rec.all())
}

func TestLeaveDuringReconnectingCancelsRetry(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSession(t, d, Options{RetryDelay: 50 * time.Millisecond})
	require.NoError(t, s.Join(context.Background()))

	d.last().drop()
	require.Eventually(t, func() bool { return s.State() == StateReconnecting }, time.Second, time.Millisecond)

	s.Leave()
	assert.Equal(t, StateClosed, s.State())

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, d.dials(), "no connection attempt after explicit leave")
}

func TestRetriesExhausted(t *testing.T) {
	d := &fakeDialer{fail: true}
	s := newTestSession(t, d, Options{MaxRetries: 2, RetryDelay: 10 * time.Millisecond})
	require.NoError(t, s.Join(context.Background()))

	require.Eventually(t, func() bool { return s.State() == StateClosed }, time.Second, time.Millisecond)
	assert.ErrorIs(t, s.Err(), ErrRetriesExhausted)
	// Initial attempt plus the two allowed retries.
	assert.Equal(t, 3, d.dials())
}

func TestClosedIsTerminal(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSession(t, d, Options{})
	require.NoError(t, s.Join(context.Background()))

	s.Leave()
	s.Leave()
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Join(context.Background()), ErrNotOpen)
}
