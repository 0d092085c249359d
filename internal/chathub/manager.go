package chathub

import (
	"encoding/json"
	"log"
	"sync"

	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"
)

// ManagerService is the hub: it owns the connected clients and their
// sessions, routes inbound messages, fans out realtime deliveries and
// performs room teardown on every exit path.
type ManagerService struct {
	mu       sync.RWMutex
	Clients  map[string]Client
	Sessions map[string]*Session

	// Channels
	IncomingCh     chan models.ChatMessage
	MatchRequestCh chan models.SearchRequest
	PubSubCh       chan models.ChatMessage

	RegisterCh   chan Client
	UnregisterCh chan Client

	Storage storage.Storage
}

func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		Clients:        make(map[string]Client),
		Sessions:       make(map[string]*Session),
		IncomingCh:     make(chan models.ChatMessage),
		MatchRequestCh: make(chan models.SearchRequest),
		PubSubCh:       make(chan models.ChatMessage),
		RegisterCh:     make(chan Client),
		UnregisterCh:   make(chan Client),
		Storage:        s,
	}
}

// Run is the hub's main dispatch loop.
func (m *ManagerService) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.handleRegister(client)
		case client := <-m.UnregisterCh:
			m.handleUnregister(client)
		case msg := <-m.IncomingCh:
			m.handleIncoming(msg)
		case msg := <-m.PubSubCh:
			m.handleDelivery(msg)
		}
	}
}

// SessionFor returns the session for a user, creating an idle one if
// none exists yet.
func (m *ManagerService) SessionFor(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.Sessions[userID]
	if !ok {
		session = NewSession(userID)
		m.Sessions[userID] = session
	}
	return session
}

func (m *ManagerService) sessionIfExists(userID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Sessions[userID]
}

func (m *ManagerService) clientFor(userID string) (Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.Clients[userID]
	return client, ok
}

// notify delivers a message to a user's client if it is online. A slow
// client is dropped rather than blocking the hub.
func (m *ManagerService) notify(userID string, msg models.ChatMessage) {
	client, ok := m.clientFor(userID)
	if !ok {
		return
	}
	select {
	case client.GetSendChannel() <- msg:
	default:
		log.Printf("WARNING: Dropping slow client %s", userID)
		go func() { m.UnregisterCh <- client }()
	}
}

func (m *ManagerService) attachClientToRoom(userID, roomID string) {
	if client, ok := m.clientFor(userID); ok {
		client.SetRoomID(roomID)
	}
}

func (m *ManagerService) handleRegister(client Client) {
	userID := client.GetUserID()
	m.mu.Lock()
	m.Clients[userID] = client
	m.mu.Unlock()

	session := m.SessionFor(userID)

	// Resume an active room after a reconnect.
	roomID, err := m.Storage.GetActiveRoomIDForUser(userID)
	if err != nil {
		log.Printf("ERROR: Failed to look up active room for user %s: %v", userID, err)
		return
	}
	if roomID != "" {
		if room, err := m.Storage.GetRoomByID(roomID); err == nil {
			partnerID := room.User1ID
			if partnerID == userID {
				partnerID = room.User2ID
			}
			session.Attach(roomID, partnerID)
			client.SetRoomID(roomID)
			log.Printf("INFO: Resumed active room %s for user %s", roomID, userID)
		}
	}
}

func (m *ManagerService) handleUnregister(client Client) {
	userID := client.GetUserID()

	m.mu.Lock()
	current, ok := m.Clients[userID]
	if !ok || current != client {
		m.mu.Unlock()
		return
	}
	delete(m.Clients, userID)
	m.mu.Unlock()

	client.Close()

	// Deterministic teardown on socket drop: the room is closed and the
	// partner is told, exactly as on an explicit disconnect.
	if session := m.sessionIfExists(userID); session != nil {
		if closedRoomID := session.Disconnect(); closedRoomID != "" {
			m.closeRoom(closedRoomID, userID)
		}
	}
}

func (m *ManagerService) handleIncoming(msg models.ChatMessage) {
	switch msg.Type {
	case models.MessageTypeSearch:
		m.handleSearch(msg)
	case models.MessageTypeNewChat:
		m.handleNewChat(msg)
	case models.MessageTypeDisconnect:
		m.handleDisconnectRequest(msg.SenderID)
	case models.MessageTypeTyping:
		m.handleTyping(msg)
	case models.MessageTypeText, "":
		m.handleChatMessage(msg)
	default:
		log.Printf("WARNING: Unknown message type %q from %s", msg.Type, msg.SenderID)
	}
}

// handleChatMessage processes a text send: optimistic transcript append
// first, then persistence, then the realtime publish.
func (m *ManagerService) handleChatMessage(msg models.ChatMessage) {
	session := m.SessionFor(msg.SenderID)

	msg.Type = models.MessageTypeText
	msg.RoomID = session.RoomID()
	if err := session.AppendLocal(msg); err != nil {
		m.notifyError(msg.SenderID, "You are not connected to a chat")
		return
	}

	if err := m.Storage.SaveMessage(&msg); err != nil {
		m.notifyError(msg.SenderID, "Failed to send message")
		return
	}
	if err := m.Storage.PublishMessage(msg.RoomID, msg); err != nil {
		log.Printf("ERROR: Failed to publish message for room %s: %v", msg.RoomID, err)
	}
}

// handleTyping forwards a transient typing indicator; nothing is persisted.
func (m *ManagerService) handleTyping(msg models.ChatMessage) {
	session := m.SessionFor(msg.SenderID)
	if session.State() != StateConnected {
		return
	}
	msg.RoomID = session.RoomID()
	if err := m.Storage.PublishMessage(msg.RoomID, msg); err != nil {
		log.Printf("ERROR: Failed to publish typing indicator: %v", err)
	}
}

func (m *ManagerService) handleSearch(msg models.ChatMessage) {
	session := m.SessionFor(msg.SenderID)
	if err := session.StartSearch(); err != nil {
		m.notifyError(msg.SenderID, "Already in a chat")
		return
	}
	m.MatchRequestCh <- m.buildSearchRequest(msg)
}

func (m *ManagerService) handleNewChat(msg models.ChatMessage) {
	session := m.SessionFor(msg.SenderID)

	closedRoomID, err := session.NewChat()
	if err != nil {
		m.notifyError(msg.SenderID, "No chat session to leave")
		return
	}
	if closedRoomID != "" {
		m.attachClientToRoom(msg.SenderID, "")
		m.closeRoom(closedRoomID, msg.SenderID)
	}
	m.MatchRequestCh <- m.buildSearchRequest(msg)
}

func (m *ManagerService) handleDisconnectRequest(userID string) {
	session := m.SessionFor(userID)
	if closedRoomID := session.Disconnect(); closedRoomID != "" {
		m.attachClientToRoom(userID, "")
		m.closeRoom(closedRoomID, userID)
	}
}

// closeRoom marks the room inactive and disconnects the partner's side.
func (m *ManagerService) closeRoom(roomID, actorID string) {
	if err := m.Storage.CloseRoom(roomID); err != nil {
		log.Printf("ERROR: Failed to close room %s: %v", roomID, err)
	}

	room, err := m.Storage.GetRoomByID(roomID)
	if err != nil {
		return
	}
	partnerID := room.User1ID
	if partnerID == actorID {
		partnerID = room.User2ID
	}

	if partnerSession := m.sessionIfExists(partnerID); partnerSession != nil {
		partnerSession.Disconnect()
	}
	m.attachClientToRoom(partnerID, "")
	m.notify(partnerID, models.ChatMessage{
		RoomID:   roomID,
		SenderID: models.SystemSenderID,
		Type:     models.MessageTypeChatEnded,
		Content:  "Stranger has disconnected",
	})
}

// buildSearchRequest decodes the advisory search parameters and drops
// the filter spec unless the seeker is premium. The gate lives here so
// the matcher can trust what it receives.
func (m *ManagerService) buildSearchRequest(msg models.ChatMessage) models.SearchRequest {
	req := models.SearchRequest{UserID: msg.SenderID}

	if msg.Metadata != "" {
		var params models.SearchParams
		if err := json.Unmarshal([]byte(msg.Metadata), &params); err != nil {
			log.Printf("WARNING: Bad search params from %s: %v", msg.SenderID, err)
		} else {
			req.Interests = params.Interests
			req.Filters = params.Filters
		}
	}

	if req.Filters != nil {
		profile, err := m.Storage.GetProfileByUserID(msg.SenderID)
		if err != nil || profile == nil || !profile.IsPremium {
			req.Filters = nil
		}
	}
	return req
}

// handleDelivery fans a pub/sub message out to the clients attached to
// its room. Each session drops echoes of its own sends.
func (m *ManagerService) handleDelivery(msg models.ChatMessage) {
	m.mu.RLock()
	targets := make([]Client, 0, 2)
	for _, client := range m.Clients {
		if client.GetRoomID() == msg.RoomID {
			targets = append(targets, client)
		}
	}
	m.mu.RUnlock()

	for _, client := range targets {
		userID := client.GetUserID()
		if msg.Type == models.MessageTypeTyping {
			if msg.SenderID != userID {
				m.notify(userID, msg)
			}
			continue
		}

		session := m.SessionFor(userID)
		if session.Deliver(msg) {
			m.notify(userID, msg)
		}
	}
}

func (m *ManagerService) notifyError(userID, text string) {
	m.notify(userID, models.ChatMessage{
		SenderID: models.SystemSenderID,
		Type:     models.MessageTypeError,
		Content:  text,
	})
}

// RecoverActiveRooms logs the rooms that were still active when the
// server went down. Their participants resume on reconnect.
func (m *ManagerService) RecoverActiveRooms() {
	activeRoomIDs, err := m.Storage.GetActiveRoomIDs()
	if err != nil {
		log.Printf("ERROR: Failed to retrieve active rooms from storage: %v", err)
		return
	}

	for _, roomID := range activeRoomIDs {
		room, err := m.Storage.GetRoomByID(roomID)
		if err != nil {
			log.Printf("WARNING: Active room %s missing from DB. Skipping.", roomID)
			continue
		}
		log.Printf("Restored active room %s between %s and %s.", roomID, room.User1ID, room.User2ID)
	}

	log.Printf("Recovery complete. Found %d previously active rooms.", len(activeRoomIDs))
}
