package models

import "time"

// ChatRoom represents a 1-on-1 chat session between two users.
// Rooms are never deleted; closing a session only flips IsActive,
// leaving the row as an audit trail.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey" json:"id"`
	// User1ID is the id of the user who initiated the match.
	User1ID string `gorm:"not null" json:"user1_id"`
	// User2ID is the id of the matched partner.
	User2ID string `gorm:"not null" json:"user2_id"`
	// IsActive indicates whether the chat room is currently active.
	IsActive bool `json:"is_active"`
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time `json:"created_at"`
	// EndedAt is the timestamp when the chat room was closed.
	EndedAt time.Time `json:"-"`
}
