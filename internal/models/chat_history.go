package models

import "gorm.io/gorm"

// ChatHistory is a persisted chat message. The embedded gorm.Model
// provides ID, CreatedAt, UpdatedAt and DeletedAt; ID doubles as the
// message id on the wire. Rows are append-only and immutable once
// written, scoped to a room for the room's lifetime and beyond.
type ChatHistory struct {
	gorm.Model

	// RoomID is the identifier of the chat room where the message was sent.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg"`
	// SenderID is the id of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg"`
	// Content is the message text.
	Content string `gorm:"type:text;not null"`
	// Type indicates the kind of message (e.g., "text", "typing").
	Type string `gorm:"type:text;not null"`
}
