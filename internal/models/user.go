package models

import "time"

// User is a chat participant. IsOnline mirrors the presence registry and is
// written only by the gateway on announce/disconnect.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Fullname  string    `db:"fullname" json:"fullname"`
	IsOnline  bool      `db:"is_online" json:"is_online"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserPage is a paged user listing.
type UserPage struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Users      []User `json:"users"`
}
