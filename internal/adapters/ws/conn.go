package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/soundroom/soundroom/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const sendBuffer = 32

// WsConn wraps one websocket with a buffered outbound channel.
// TrySend never blocks: a full buffer or a closed connection means the
// frame is simply not delivered (at-most-once, best-effort).
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsConn(conn *websocket.Conn) *WsConn {
	return &WsConn{
		conn: conn,
		send: make(chan core.Frame, sendBuffer),
	}
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
