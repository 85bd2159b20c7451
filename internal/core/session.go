package core

// memberSession pairs a nickname with its transport endpoint.
type memberSession struct {
	nickname string
	conn     DeliverConn
}

// NewMemberSession avoids raw literals in adapters and keeps construction obvious.
func NewMemberSession(nickname string, conn DeliverConn) MemberSession {
	return &memberSession{nickname: nickname, conn: conn}
}

func (m *memberSession) Nickname() string  { return m.nickname }
func (m *memberSession) Conn() DeliverConn { return m.conn }
