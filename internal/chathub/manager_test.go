package chathub_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/models"
)

func newTestHub(storageMock *MockStorage) *chathub.ManagerService {
	hub := chathub.NewManagerService(storageMock)
	// Buffered so handlers never block on the matcher side in tests.
	hub.MatchRequestCh = make(chan models.SearchRequest, 10)
	return hub
}

func TestManager_RegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)
	storageMock.On("GetActiveRoomIDForUser", "user_A").Return("", nil)

	clientA := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user_A")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user_A")
}

func TestManager_RegisterResumesActiveRoom(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	room := &models.ChatRoom{RoomID: "room1", User1ID: "user_A", User2ID: "user_B", IsActive: true}
	storageMock.On("GetActiveRoomIDForUser", "user_A").Return("room1", nil)
	storageMock.On("GetRoomByID", "room1").Return(room, nil)

	clientA := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, "room1", clientA.GetRoomID(), "reconnecting client must rejoin its active room")
	session := hub.SessionFor("user_A")
	assert.Equal(t, chathub.StateConnected, session.State())
	assert.Equal(t, "user_B", session.PartnerID())
}

// TestManager_RegisterStorageError verifies a failed active-room lookup
// still leaves the client registered with an idle session.
func TestManager_RegisterStorageError(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)
	storageMock.On("GetActiveRoomIDForUser", "user_A").Return("", errors.New("db down"))

	clientA := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	assert.Contains(t, hub.Clients, "user_A")
	assert.Equal(t, chathub.StateIdle, hub.SessionFor("user_A").State())
	assert.Empty(t, clientA.GetRoomID())
}

// TestManager_UnregisterClosesRoom verifies teardown on socket drop: the
// room closes and the partner is told, same as an explicit disconnect.
func TestManager_UnregisterClosesRoom(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	room := &models.ChatRoom{RoomID: "room1", User1ID: "user_A", User2ID: "user_B", IsActive: true}
	storageMock.On("CloseRoom", "room1").Return(nil)
	storageMock.On("GetRoomByID", "room1").Return(room, nil)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB
	hub.SessionFor("user_A").Attach("room1", "user_B")
	hub.SessionFor("user_B").Attach("room1", "user_A")
	clientA.SetRoomID("room1")
	clientB.SetRoomID("room1")

	go hub.Run()

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "CloseRoom", "room1")
	assert.Equal(t, chathub.StateDisconnected, hub.SessionFor("user_B").State())
	assert.Empty(t, clientB.GetRoomID(), "partner must be detached from the closed room")

	select {
	case msg := <-clientB.RecvChannel:
		assert.Equal(t, models.MessageTypeChatEnded, msg.Type)
		assert.Equal(t, models.SystemSenderID, msg.SenderID)
	default:
		t.Error("partner did not receive the chat-ended notice")
	}
}

func TestManager_HandleChatMessage(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatMessage")).Return(nil)
	storageMock.On("PublishMessage", "room1", mock.AnythingOfType("models.ChatMessage")).Return(nil)

	hub.SessionFor("user_A").Attach("room1", "user_B")

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Content: "hello", Type: models.MessageTypeText}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "SaveMessage", mock.AnythingOfType("*models.ChatMessage"))
	storageMock.AssertCalled(t, "PublishMessage", "room1", mock.AnythingOfType("models.ChatMessage"))

	transcript := hub.SessionFor("user_A").Transcript()
	assert.Len(t, transcript, 1, "local send is appended optimistically")
	assert.Equal(t, "user", transcript[0].Sender)
}

func TestManager_ChatMessageWhileNotConnected(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Content: "hello", Type: models.MessageTypeText}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)

	select {
	case msg := <-clientA.RecvChannel:
		assert.Equal(t, models.MessageTypeError, msg.Type)
	default:
		t.Error("sender did not receive an error notice")
	}
}

func TestManager_HandleSearch(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Type: models.MessageTypeSearch}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateConnecting, hub.SessionFor("user_A").State())

	select {
	case req := <-hub.MatchRequestCh:
		assert.Equal(t, "user_A", req.UserID)
		assert.Nil(t, req.Filters)
	default:
		t.Error("search did not produce a match request")
	}
}

// TestManager_SearchFilterGate verifies the premium gate: filter specs
// from non-premium users are stripped before the matcher sees them.
func TestManager_SearchFilterGate(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	storageMock.On("GetProfileByUserID", "free_user").Return(&models.UserProfile{
		UserID: "free_user", IsPremium: false,
	}, nil)
	storageMock.On("GetProfileByUserID", "premium_user").Return(&models.UserProfile{
		UserID: "premium_user", IsPremium: true,
	}, nil)

	go hub.Run()

	metadata := `{"filters":{"gender":"female","ageRange":[25,40],"heightRange":[150,200]}}`

	hub.IncomingCh <- models.ChatMessage{SenderID: "free_user", Type: models.MessageTypeSearch, Metadata: metadata}
	time.Sleep(100 * time.Millisecond)

	req := <-hub.MatchRequestCh
	assert.Nil(t, req.Filters, "non-premium filters must be stripped")

	hub.IncomingCh <- models.ChatMessage{SenderID: "premium_user", Type: models.MessageTypeSearch, Metadata: metadata}
	time.Sleep(100 * time.Millisecond)

	req = <-hub.MatchRequestCh
	assert.NotNil(t, req.Filters, "premium filters must reach the matcher")
	assert.Equal(t, "female", req.Filters.Gender)
}

func TestManager_HandleNewChat(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	room := &models.ChatRoom{RoomID: "room1", User1ID: "user_A", User2ID: "user_B", IsActive: true}
	storageMock.On("CloseRoom", "room1").Return(nil)
	storageMock.On("GetRoomByID", "room1").Return(room, nil)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA
	hub.SessionFor("user_A").Attach("room1", "user_B")
	clientA.SetRoomID("room1")

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Type: models.MessageTypeNewChat}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "CloseRoom", "room1")
	assert.Equal(t, chathub.StateConnecting, hub.SessionFor("user_A").State())
	assert.Empty(t, clientA.GetRoomID())

	select {
	case req := <-hub.MatchRequestCh:
		assert.Equal(t, "user_A", req.UserID)
	default:
		t.Error("new chat did not re-enter matchmaking")
	}
}

func TestManager_HandleDisconnect(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	room := &models.ChatRoom{RoomID: "room1", User1ID: "user_A", User2ID: "user_B", IsActive: true}
	storageMock.On("CloseRoom", "room1").Return(nil)
	storageMock.On("GetRoomByID", "room1").Return(room, nil)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA
	hub.SessionFor("user_A").Attach("room1", "user_B")
	clientA.SetRoomID("room1")

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Type: models.MessageTypeDisconnect}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertCalled(t, "CloseRoom", "room1")
	assert.Equal(t, chathub.StateDisconnected, hub.SessionFor("user_A").State())
	assert.Empty(t, clientA.GetRoomID())
}

// TestManager_DeliveryDedup drives a pub/sub delivery through the hub:
// the partner receives the message, the sender's echo is dropped.
func TestManager_DeliveryDedup(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB
	hub.SessionFor("user_A").Attach("room1", "user_B")
	hub.SessionFor("user_B").Attach("room1", "user_A")
	clientA.SetRoomID("room1")
	clientB.SetRoomID("room1")

	go hub.Run()

	hub.PubSubCh <- models.ChatMessage{RoomID: "room1", SenderID: "user_A", Content: "hello", Type: models.MessageTypeText}
	time.Sleep(100 * time.Millisecond)

	select {
	case msg := <-clientB.RecvChannel:
		assert.Equal(t, "hello", msg.Content)
	default:
		t.Error("partner did not receive the message")
	}

	select {
	case msg := <-clientA.RecvChannel:
		t.Errorf("sender received its own echo: %+v", msg)
	default:
	}

	assert.Len(t, hub.SessionFor("user_B").Transcript(), 1)
	assert.Empty(t, hub.SessionFor("user_A").Transcript())
}

func TestManager_TypingForwardedNotPersisted(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	storageMock.On("PublishMessage", "room1", mock.AnythingOfType("models.ChatMessage")).Return(nil)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB
	hub.SessionFor("user_A").Attach("room1", "user_B")
	hub.SessionFor("user_B").Attach("room1", "user_A")
	clientA.SetRoomID("room1")
	clientB.SetRoomID("room1")

	go hub.Run()

	hub.IncomingCh <- models.ChatMessage{SenderID: "user_A", Type: models.MessageTypeTyping}
	time.Sleep(100 * time.Millisecond)

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	storageMock.AssertCalled(t, "PublishMessage", "room1", mock.AnythingOfType("models.ChatMessage"))

	hub.PubSubCh <- models.ChatMessage{RoomID: "room1", SenderID: "user_A", Type: models.MessageTypeTyping}
	time.Sleep(100 * time.Millisecond)

	select {
	case msg := <-clientB.RecvChannel:
		assert.Equal(t, models.MessageTypeTyping, msg.Type)
	default:
		t.Error("partner did not receive the typing indicator")
	}
	assert.Empty(t, hub.SessionFor("user_B").Transcript(), "typing must not enter the transcript")
}

func TestManager_RecoverActiveRooms(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)

	room := &models.ChatRoom{RoomID: "room1", User1ID: "user_A", User2ID: "user_B", IsActive: true}
	storageMock.On("GetActiveRoomIDs").Return([]string{"room1"}, nil)
	storageMock.On("GetRoomByID", "room1").Return(room, nil)

	hub.RecoverActiveRooms()

	storageMock.AssertExpectations(t)
}
