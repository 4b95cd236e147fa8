package models

import "time"

// Message is a direct message between two users. The id and created_at are
// assigned by the store on insert; Read transitions false to true only.
type Message struct {
	ID         int64     `db:"id" json:"id"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	ReceiverID int64     `db:"receiver_id" json:"receiver_id"`
	Content    string    `db:"content" json:"content"`
	Read       bool      `db:"read" json:"read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ThreadSummary is a derived per-peer conversation summary: the most recent
// message exchanged with that peer plus the unread count addressed to the
// requesting user.
type ThreadSummary struct {
	User        User    `json:"user"`
	LastMessage Message `json:"last_message"`
	UnreadCount int     `json:"unread_count"`
}
