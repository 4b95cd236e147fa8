package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/auth"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/presence"
	"messenger-service/internal/repositories"
)

const eventsRoutingKey = "ws_events.messenger"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway accepts persistent client connections, authenticates them, owns the
// presence registry, and routes message, typing, and presence events.
type Gateway struct {
	registry *presence.Registry
	users    repositories.UserRepository
	messages repositories.MessageRepository
	verifier auth.TokenVerifier

	mu       sync.RWMutex
	sessions map[*Session]struct{}
}

// New constructs a Gateway around its collaborators.
func New(registry *presence.Registry, users repositories.UserRepository, messages repositories.MessageRepository, verifier auth.TokenVerifier) *Gateway {
	return &Gateway{
		registry: registry,
		users:    users,
		messages: messages,
		verifier: verifier,
		sessions: make(map[*Session]struct{}),
	}
}

// Handle authenticates and upgrades the connection, then serves its event
// loop until disconnect. A missing or invalid credential refuses the
// connection before any event is accepted.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/gateway").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := g.verifier.Verify(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	session := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
		conn:        conn,
	}

	g.addSession(session)
	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	g.publishConnEvent(session, "ws_connect", "")

	g.readLoop(session)
}

// readLoop processes one connection's events in arrival order. Store calls
// may block; other connections' loops keep running independently.
func (g *Gateway) readLoop(session *Session) {
	var closeReason string
	defer g.teardown(session, &closeReason)

	for {
		_, raw, err := session.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			return
		}

		var envelope models.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			session.SendError("malformed event")
			continue
		}
		observability.IncWSEvent(envelope.Event)

		switch envelope.Event {
		case models.EventUserConnected:
			g.handleAnnounce(session)
		case models.EventSendMessage:
			g.handleSend(session, envelope.Data)
		case models.EventTyping:
			g.handleTyping(session, envelope.Data)
		default:
			session.SendError("unknown event")
		}
	}
}

// handleAnnounce moves the session into the announced state: the presence
// registry binds the identity to this handle (replacing any previous handle),
// the durable online flag flips, and everyone else hears about it.
func (g *Gateway) handleAnnounce(session *Session) {
	g.registry.Register(session.UserID, session)
	session.announced = true
	observability.SetOnlineUsers(g.registry.Online())

	if err := g.users.SetOnline(context.Background(), session.UserID, true); err != nil {
		log.Printf("set online failed for user %d: %v", session.UserID, err)
	}

	g.broadcastStatus(session, session.UserID, true)
	g.publishConnEvent(session, "presence_online", "")
}

// handleSend implements the send protocol: validate, persist, forward
// best-effort to the receiver's registered handle, always acknowledge the
// sender with the persisted id and the echoed correlation token.
func (g *Gateway) handleSend(session *Session, data json.RawMessage) {
	var req models.SendMessagePayload
	if err := json.Unmarshal(data, &req); err != nil || req.Receiver == 0 {
		session.SendError("invalid send_message payload")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		session.SendError("message content is empty")
		return
	}

	// Detached context: a disconnect mid-persist must not lose the write.
	msg, err := g.messages.CreateMessage(context.Background(), session.UserID, req.Receiver, req.Content)
	if err != nil {
		log.Printf("persist message failed (user %d): %v", session.UserID, err)
		session.SendError("failed to store message")
		return
	}

	outcome := "stored"
	if receiver, ok := g.registry.Lookup(req.Receiver); ok {
		env, envErr := models.NewEnvelope(models.EventReceiveMessage, msg)
		if envErr == nil {
			if sendErr := receiver.Send(env); sendErr != nil {
				// Delivery is best-effort; the message is durable and the
				// receiver recovers it on the next history fetch.
				log.Printf("forward to user %d failed: %v", req.Receiver, sendErr)
			} else {
				outcome = "forwarded"
			}
		}
	}
	observability.IncMessageDelivered(outcome)

	ack, err := models.NewEnvelope(models.EventMessageSent, models.MessageSentPayload{
		MessageID: msg.ID,
		TempID:    req.TempID,
	})
	if err == nil {
		_ = session.Send(ack)
	}

	g.publishMessageEvent(session, msg, outcome)
}

// handleTyping relays a typing signal to the one target connection, if online.
// No state is kept and nothing is broadcast.
func (g *Gateway) handleTyping(session *Session, data json.RawMessage) {
	var req models.TypingPayload
	if err := json.Unmarshal(data, &req); err != nil || req.ToUserID == 0 {
		session.SendError("invalid typing payload")
		return
	}

	target, ok := g.registry.Lookup(req.ToUserID)
	if !ok {
		return
	}
	env, err := models.NewEnvelope(models.EventTyping, models.TypingPayload{FromUserID: session.UserID})
	if err == nil {
		_ = target.Send(env)
	}
}

// teardown releases the connection: the registry entry is removed only when
// this session is still the registered handle, so a reconnect that already
// replaced it is left untouched.
func (g *Gateway) teardown(session *Session, closeReason *string) {
	g.removeSession(session)

	if userID, removed := g.registry.Unregister(session); removed {
		observability.SetOnlineUsers(g.registry.Online())
		if err := g.users.SetOnline(context.Background(), userID, false); err != nil {
			log.Printf("set offline failed for user %d: %v", userID, err)
		}
		g.broadcastStatus(session, userID, false)
		g.publishConnEvent(session, "presence_offline", "")
	}

	observability.DecWSActive()
	observability.IncWSEvent("ws_disconnect")
	g.publishConnEvent(session, "ws_disconnect", *closeReason)
	session.conn.Close()
}

// broadcastStatus fans a presence change out to every other open connection,
// announced or not, so every client can refresh its online indicators.
func (g *Gateway) broadcastStatus(origin *Session, userID int64, online bool) {
	env, err := models.NewEnvelope(models.EventUserStatusChange, models.StatusChangePayload{
		UserID:   userID,
		IsOnline: online,
	})
	if err != nil {
		return
	}

	for _, peer := range g.snapshotSessions() {
		if peer == origin {
			continue
		}
		if err := peer.Send(env); err != nil {
			log.Printf("websocket write error: %v", err)
			peer.conn.Close()
			g.removeSession(peer)
		}
	}
}

func (g *Gateway) addSession(session *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[session] = struct{}{}
}

func (g *Gateway) removeSession(session *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.sessions, session)
}

func (g *Gateway) snapshotSessions() []*Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sessions := make([]*Session, 0, len(g.sessions))
	for session := range g.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (g *Gateway) publishConnEvent(session *Session, name, reason string) {
	_ = observability.PublishEvent(context.Background(), eventsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		RequestID: session.RequestID,
		TraceID:   session.TraceID,
		Payload: map[string]interface{}{
			"conn_id":     session.ID,
			"user_id":     session.UserID,
			"device_id":   session.DeviceID,
			"ip":          session.IP,
			"announced":   session.announced,
			"duration_ms": time.Since(session.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
	})
}

func (g *Gateway) publishMessageEvent(session *Session, msg models.Message, outcome string) {
	_ = observability.PublishEvent(context.Background(), eventsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "message_persisted",
		RequestID: session.RequestID,
		TraceID:   session.TraceID,
		Payload: map[string]interface{}{
			"message_id":  msg.ID,
			"sender_id":   msg.SenderID,
			"receiver_id": msg.ReceiverID,
			"outcome":     outcome,
		},
	})
}

// bearerToken pulls the credential from the Authorization header or, for
// browser websocket clients that cannot set headers, the token query param.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
