package models

import (
	"time"

	"strangerlink/backend/internal/filters"
)

// Message types exchanged over the realtime channel.
const (
	MessageTypeText       = "text"
	MessageTypeTyping     = "typing"
	MessageTypeSearch     = "search"
	MessageTypeNewChat    = "new_chat"
	MessageTypeDisconnect = "disconnect"

	MessageTypeMatchFound = "system_match_found"
	MessageTypeNoMatch    = "system_no_match"
	MessageTypeChatEnded  = "system_chat_ended"
	MessageTypeError      = "system_error"
)

// SystemSenderID marks messages originated by the server itself.
const SystemSenderID = "system"

// ChatMessage is the wire format for messages flowing between clients,
// the hub and the Redis pub/sub channel.
type ChatMessage struct {
	ID        uint      `json:"id,omitempty"`
	SenderID  string    `json:"sender_id"`
	RoomID    string    `json:"room_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// SearchParams is the JSON payload carried in the Metadata field of
// "search" and "new_chat" messages.
type SearchParams struct {
	Interests []string      `json:"interests,omitempty"`
	Filters   *filters.Spec `json:"filters,omitempty"`
}

// SearchRequest asks the matcher to find a partner for UserID.
// Interests are advisory only. Filters is non-nil when a premium user
// wants the candidate query constrained.
type SearchRequest struct {
	UserID    string
	Interests []string
	Filters   *filters.Spec
}
