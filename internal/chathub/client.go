package chathub

import "strangerlink/backend/internal/models"

// Client is the interface for one active connection. It abstracts the
// transport so the hub can manage clients uniformly.
type Client interface {
	// GetUserID returns the identity behind the connection.
	GetUserID() string
	// GetRoomID returns the room the client is currently attached to,
	// or "" when not in a chat.
	GetRoomID() string
	// SetRoomID attaches or detaches the client from a room. Clearing
	// the room id is what ends delivery of that room's messages, so it
	// acts as the unsubscribe on every exit path. The matcher and the
	// hub touch the room id from different goroutines; implementations
	// must make GetRoomID/SetRoomID safe for concurrent use.
	SetRoomID(string)

	// GetSendChannel returns the channel the hub writes outbound
	// messages to.
	GetSendChannel() chan<- models.ChatMessage

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}
