package chathub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"strangerlink/backend/internal/models"
)

// State is the chat-session lifecycle:
// idle -> connecting -> connected -> (disconnected | connecting).
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

var ErrInvalidTransition = errors.New("invalid session transition")

// TranscriptEntry is one rendered line of the chat transcript. Sender is
// "user" for local sends and "stranger" for delivered peer messages.
type TranscriptEntry struct {
	MessageID uint
	SenderID  string
	Sender    string
	Content   string
	SentAt    time.Time
}

// Session is the explicit per-user session context: current state, room,
// partner and transcript. It replaces ambient page-level flags with a
// single owned object; all mutation goes through transition methods.
type Session struct {
	mu sync.Mutex

	userID    string
	state     State
	roomID    string
	partnerID string

	transcript []TranscriptEntry
}

func NewSession(userID string) *Session {
	return &Session{userID: userID, state: StateIdle}
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func (s *Session) PartnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partnerID
}

// Transcript returns a copy of the transcript in append order.
func (s *Session) Transcript() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// StartSearch enters connecting from idle or disconnected.
func (s *Session) StartSearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle && s.state != StateDisconnected {
		return fmt.Errorf("%w: %s -> connecting", ErrInvalidTransition, s.state)
	}
	s.state = StateConnecting
	return nil
}

// Connect completes a successful match: connecting -> connected.
func (s *Session) Connect(roomID, partnerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		return fmt.Errorf("%w: %s -> connected", ErrInvalidTransition, s.state)
	}
	s.state = StateConnected
	s.roomID = roomID
	s.partnerID = partnerID
	return nil
}

// Attach force-joins the session to a room regardless of current state.
// Used for the passive side of a match and for resuming an active room
// after a reconnect.
func (s *Session) Attach(roomID, partnerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateConnected
	s.roomID = roomID
	s.partnerID = partnerID
}

// FailSearch records matchmaking exhaustion: connecting -> disconnected.
// No room exists at this point.
func (s *Session) FailSearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnecting {
		return fmt.Errorf("%w: %s -> disconnected", ErrInvalidTransition, s.state)
	}
	s.state = StateDisconnected
	return nil
}

// AppendLocal appends a locally sent message to the transcript before
// any server confirmation. Only legal while connected.
func (s *Session) AppendLocal(msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected {
		return fmt.Errorf("%w: send while %s", ErrInvalidTransition, s.state)
	}
	s.transcript = append(s.transcript, TranscriptEntry{
		MessageID: msg.ID,
		SenderID:  s.userID,
		Sender:    "user",
		Content:   msg.Content,
		SentAt:    time.Now(),
	})
	return nil
}

// Deliver appends an inbound realtime message. Messages echoed back for
// the local identity are dropped: deduplication is by sender-id
// mismatch, not by message id. Returns whether the message was appended.
func (s *Session) Deliver(msg models.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected || msg.RoomID != s.roomID {
		return false
	}
	if msg.SenderID == s.userID {
		return false
	}
	sentAt := msg.CreatedAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	s.transcript = append(s.transcript, TranscriptEntry{
		MessageID: msg.ID,
		SenderID:  msg.SenderID,
		Sender:    "stranger",
		Content:   msg.Content,
		SentAt:    sentAt,
	})
	return true
}

// NewChat leaves the current room and immediately re-enters connecting.
// The transcript and partner state are cleared. Returns the room id that
// must be closed, "" if there was none.
func (s *Session) NewChat() (closedRoomID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateConnected && s.state != StateDisconnected {
		return "", fmt.Errorf("%w: new chat while %s", ErrInvalidTransition, s.state)
	}
	closedRoomID = s.roomID
	s.roomID = ""
	s.partnerID = ""
	s.transcript = nil
	s.state = StateConnecting
	return closedRoomID, nil
}

// Disconnect ends the session: room and partner references are cleared
// but the transcript stays visible until a new session starts. Returns
// the room id that must be closed, "" if there was none.
func (s *Session) Disconnect() (closedRoomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	closedRoomID = s.roomID
	s.roomID = ""
	s.partnerID = ""
	s.state = StateDisconnected
	return closedRoomID
}
