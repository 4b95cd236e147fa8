package client

import (
	"strconv"
	"strings"
	"time"

	"messenger-service/internal/models"
)

// TempIDPrefix marks a locally synthesized message awaiting confirmation.
const TempIDPrefix = "temp-"

// ChatMessage is the client-side view of a message. ID is the server id in
// decimal, or a TempIDPrefix-marked correlation token for an optimistic entry
// the server has not confirmed yet.
type ChatMessage struct {
	ID         string
	SenderID   int64
	ReceiverID int64
	Content    string
	Read       bool
	Timestamp  time.Time
}

// IsTemp reports whether the entry is an unconfirmed optimistic message.
func (m ChatMessage) IsTemp() bool {
	return strings.HasPrefix(m.ID, TempIDPrefix)
}

// ConfirmedID strips the temporary marker, yielding the id the entry will
// carry once persisted.
func (m ChatMessage) ConfirmedID() string {
	return strings.TrimPrefix(m.ID, TempIDPrefix)
}

// FromModel converts a wire message into its client representation.
func FromModel(m models.Message) ChatMessage {
	return ChatMessage{
		ID:         strconv.FormatInt(m.ID, 10),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Read:       m.Read,
		Timestamp:  m.CreatedAt,
	}
}
