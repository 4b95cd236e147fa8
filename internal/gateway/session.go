package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
)

// Session is one authenticated websocket connection. It is bound to a user
// identity at handshake time but only becomes reachable for routing once the
// client announces presence.
type Session struct {
	ID          string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time

	conn      *websocket.Conn
	writeMu   sync.Mutex
	announced bool
}

// Send writes one event to the connection. Writes are serialized per session;
// gorilla/websocket does not allow concurrent writers.
func (s *Session) Send(event models.Envelope) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(event)
}

// SendError reports an operation-scoped failure to this connection only.
func (s *Session) SendError(reason string) {
	env, err := models.NewEnvelope(models.EventError, models.ErrorPayload{Message: reason})
	if err != nil {
		return
	}
	_ = s.Send(env)
}
