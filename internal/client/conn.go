package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"messenger-service/internal/models"
)

// Events are optional callbacks for events the store does not absorb.
type Events struct {
	OnStatusChange func(userID int64, online bool)
	OnError        func(message string)
}

// Conn is a client connection to the realtime gateway. Incoming events are
// dispatched into the store and typing tracker; sends go through SendMessage
// so an optimistic entry always exists before the wire write.
type Conn struct {
	ws     *websocket.Conn
	store  *Store
	typing *TypingTracker
	events Events

	writeMu    sync.Mutex
	typingMu   sync.Mutex
	lastTyping map[int64]time.Time

	done chan struct{}
}

// Dial connects and authenticates against the gateway. The credential is
// presented at handshake time; a refused handshake surfaces as an error here
// and no connection exists afterwards.
func Dial(ctx context.Context, url, token string, store *Store, typing *TypingTracker, events Events) (*Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial gateway: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	c := &Conn{
		ws:         ws,
		store:      store,
		typing:     typing,
		events:     events,
		lastTyping: make(map[int64]time.Time),
		done:       make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Announce advertises presence. Called once the client finished its own
// bootstrap; before this the server does not treat the user as reachable.
func (c *Conn) Announce() error {
	env, err := models.NewEnvelope(models.EventUserConnected, nil)
	if err != nil {
		return err
	}
	return c.write(env)
}

// SendMessage appends an optimistic entry and asks the gateway to deliver it.
// The returned temp id correlates the eventual confirmation.
func (c *Conn) SendMessage(receiverID int64, content string) (string, error) {
	msg := c.store.AppendOptimistic(uuid.NewString(), receiverID, content)

	env, err := models.NewEnvelope(models.EventSendMessage, models.SendMessagePayload{
		Receiver: receiverID,
		Content:  content,
		TempID:   msg.ID,
	})
	if err != nil {
		return "", err
	}
	if err := c.write(env); err != nil {
		return "", err
	}
	return msg.ID, nil
}

// InputChanged signals typing to the peer, renewing at most once per idle
// window. Ceasing input simply stops the renewals; the receiver's expiry
// timer clears the indicator.
func (c *Conn) InputChanged(toUserID int64) error {
	c.typingMu.Lock()
	last := c.lastTyping[toUserID]
	if time.Since(last) < DefaultTypingIdle {
		c.typingMu.Unlock()
		return nil
	}
	c.lastTyping[toUserID] = time.Now()
	c.typingMu.Unlock()

	env, err := models.NewEnvelope(models.EventTyping, models.TypingPayload{ToUserID: toUserID})
	if err != nil {
		return err
	}
	return c.write(env)
}

// Done closes when the connection's read loop has finished.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down and releases typing timers.
func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) write(env models.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(env)
}

func (c *Conn) readLoop() {
	defer close(c.done)
	if c.typing != nil {
		defer c.typing.Stop()
	}

	for {
		var env models.Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			return
		}
		c.dispatch(env)
	}
}

func (c *Conn) dispatch(env models.Envelope) {
	switch env.Event {
	case models.EventReceiveMessage:
		var msg models.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return
		}
		c.store.ApplyReceive(msg)
		// A delivered message implies the sender stopped typing.
		if c.typing != nil {
			c.typing.Clear(msg.SenderID)
		}
	case models.EventMessageSent:
		var ack models.MessageSentPayload
		if err := json.Unmarshal(env.Data, &ack); err != nil {
			return
		}
		c.store.ApplyConfirmation(ack.TempID, ack.MessageID)
	case models.EventTyping:
		var typing models.TypingPayload
		if err := json.Unmarshal(env.Data, &typing); err != nil {
			return
		}
		if c.typing != nil {
			c.typing.Signal(typing.FromUserID)
		}
	case models.EventUserStatusChange:
		var status models.StatusChangePayload
		if err := json.Unmarshal(env.Data, &status); err != nil {
			return
		}
		if c.events.OnStatusChange != nil {
			c.events.OnStatusChange(status.UserID, status.IsOnline)
		}
	case models.EventError:
		var failure models.ErrorPayload
		if err := json.Unmarshal(env.Data, &failure); err != nil {
			return
		}
		if c.events.OnError != nil {
			c.events.OnError(failure.Message)
		}
	}
}
