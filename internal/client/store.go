package client

import (
	"strconv"
	"sync"
	"time"

	"messenger-service/internal/models"
)

// Store holds one client's message state: the historical page for the
// currently open conversation, replaced wholesale on switch or refetch, and
// every message observed live over the connection's lifetime, kept across
// conversation switches and cleared only on reset.
type Store struct {
	mu         sync.Mutex
	selfID     int64
	activePeer int64
	historical []ChatMessage
	live       []ChatMessage
}

// NewStore creates a store for the given local identity.
func NewStore(selfID int64) *Store {
	return &Store{selfID: selfID}
}

// OpenConversation switches the active conversation and installs its fetched
// history. The store pages newest-first; display order is recomputed on read.
func (s *Store) OpenConversation(peerID int64, history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePeer = peerID
	s.historical = fromModels(history)
}

// SetHistory replaces the historical set for the active conversation.
func (s *Store) SetHistory(history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historical = fromModels(history)
}

// AppendOptimistic records a locally synthesized message under a temporary
// id derived from the correlation token. Exactly one optimistic entry exists
// per send until the matching confirmation or a refetch supersedes it.
func (s *Store) AppendOptimistic(token string, receiverID int64, content string) ChatMessage {
	msg := ChatMessage{
		ID:         TempIDPrefix + token,
		SenderID:   s.selfID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = append(s.live, msg)
	return msg
}

// ApplyReceive accumulates a live message, ignoring ids already observed.
func (s *Store) ApplyReceive(m models.Message) {
	msg := FromModel(m)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.live {
		if existing.ID == msg.ID {
			return
		}
	}
	s.live = append(s.live, msg)
}

// ApplyConfirmation retires the optimistic entry carrying tempID by rewriting
// it in place to the server-assigned id. The local timestamp is kept; ordering
// is settled by the next historical fetch.
func (s *Store) ApplyConfirmation(tempID string, messageID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.live {
		if s.live[i].ID == tempID {
			s.live[i].ID = strconv.FormatInt(messageID, 10)
			return
		}
	}
}

// Displayed computes the merged view for the open conversation.
func (s *Store) Displayed() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePeer == 0 {
		return nil
	}
	return MergeConversation(s.historical, s.live, s.selfID, s.activePeer)
}

// ActivePeer returns the peer of the open conversation, zero when none.
func (s *Store) ActivePeer() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePeer
}

// Reset drops all state, as on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePeer = 0
	s.historical = nil
	s.live = nil
}

func fromModels(history []models.Message) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, FromModel(m))
	}
	return msgs
}
