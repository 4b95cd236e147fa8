package models

import "encoding/json"

// Event names carried on the realtime channel.
const (
	EventUserConnected    = "user_connected"
	EventSendMessage      = "send_message"
	EventReceiveMessage   = "receive_message"
	EventMessageSent      = "message_sent"
	EventTyping           = "typing"
	EventUserStatusChange = "user_status_change"
	EventError            = "error"
)

// Envelope frames every event on the websocket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into a framed event.
func NewEnvelope(event string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}

// SendMessagePayload is the client request to deliver a message.
type SendMessagePayload struct {
	Receiver int64  `json:"receiver"`
	Content  string `json:"content"`
	TempID   string `json:"temp_id,omitempty"`
}

// MessageSentPayload acknowledges a send back to its origin connection. The
// temp id echoes the client correlation token when one was supplied.
type MessageSentPayload struct {
	MessageID int64  `json:"message_id"`
	TempID    string `json:"temp_id,omitempty"`
}

// TypingPayload names the target on the way in and the sender on the way out.
type TypingPayload struct {
	ToUserID   int64 `json:"to_user_id,omitempty"`
	FromUserID int64 `json:"from_user_id,omitempty"`
}

// StatusChangePayload is broadcast whenever a user's presence flips.
type StatusChangePayload struct {
	UserID   int64 `json:"user_id"`
	IsOnline bool  `json:"is_online"`
}

// ErrorPayload carries an operation-scoped, human-readable failure reason.
type ErrorPayload struct {
	Message string `json:"message"`
}
