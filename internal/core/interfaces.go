package core

// Frame is an encoded wire payload.
type Frame []byte

// ConnID identifies one live transport connection. A reconnect is a new
// connection and therefore a new ConnID, even for the same client.
type ConnID string

// DeliverConn abstracts the outbound half of a member's transport.
// Owned by the adapter; the adapter must Close() it.
type DeliverConn interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a member's display identity and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Nickname() string
	Conn() DeliverConn
}

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Nickname string `json:"nickname"`
}
