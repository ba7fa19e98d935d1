package gateway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pscheid92/sessionhub/internal/domain"
)

const writeTimeout = 5 * time.Second

// link is the live websocket of one session. It is the domain.Connection handed to
// the registry.
type link struct {
	sessionID string
	conn      *websocket.Conn

	writeMu  sync.Mutex
	identity atomic.Pointer[domain.Identity]
	closing  atomic.Bool
	done     chan struct{}
}

var _ domain.Connection = (*link)(nil)

func newLink(sessionID string, conn *websocket.Conn) *link {
	return &link{sessionID: sessionID, conn: conn, done: make(chan struct{})}
}

func (l *link) SessionID() string { return l.sessionID }

func (l *link) Identity() (domain.Identity, bool) {
	id := l.identity.Load()
	if id == nil || id.IsZero() {
		return domain.Identity{}, false
	}
	return *id, true
}

func (l *link) setIdentity(name, jid string) domain.Identity {
	id := domain.Identity{DisplayName: name, ProtocolID: jid}
	l.identity.Store(&id)
	return id
}

func (l *link) writeJSON(f frame) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return l.conn.WriteJSON(f)
}

func (l *link) writeClose() error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}
