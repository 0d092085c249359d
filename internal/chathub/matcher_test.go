package chathub_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/filters"
	"strangerlink/backend/internal/models"
)

func startMatcher(storageMock *MockStorage) (*chathub.ManagerService, *chathub.MatcherService) {
	hub := newTestHub(storageMock)
	matcher := chathub.NewMatcherService(hub, storageMock)
	go matcher.Run()
	return hub, matcher
}

func TestMatcher_SuccessfulMatch(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{{UserID: "user_B"}}, nil)
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.ChatRoom")).Return(nil)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateConnected, sessionA.State())
	assert.Equal(t, "user_B", sessionA.PartnerID())
	assert.Equal(t, chathub.StateConnected, hub.SessionFor("user_B").State())

	assert.NotEmpty(t, clientA.GetRoomID())
	assert.Equal(t, clientA.GetRoomID(), clientB.GetRoomID(), "both sides must land in the same room")

	for _, client := range []*MockClient{clientA, clientB} {
		select {
		case msg := <-client.RecvChannel:
			assert.Equal(t, models.MessageTypeMatchFound, msg.Type)
			assert.Equal(t, models.SystemSenderID, msg.SenderID)
		default:
			t.Errorf("client %s did not receive the match notice", client.GetUserID())
		}
	}

	storageMock.AssertExpectations(t)
}

func TestMatcher_NoCandidates(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{}, nil)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateDisconnected, sessionA.State())
	assert.Empty(t, clientA.GetRoomID())

	select {
	case msg := <-clientA.RecvChannel:
		assert.Equal(t, models.MessageTypeNoMatch, msg.Type)
		assert.Equal(t, "No users available right now. Please try again later.", msg.Content)
	default:
		t.Error("seeker did not receive the no-match notice")
	}

	storageMock.AssertNotCalled(t, "SaveRoom", mock.Anything)
}

func TestMatcher_CandidateQueryError(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{}, errors.New("db down"))

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateDisconnected, sessionA.State())

	select {
	case msg := <-clientA.RecvChannel:
		assert.Equal(t, models.MessageTypeNoMatch, msg.Type)
	default:
		t.Error("seeker did not receive the no-match notice")
	}
}

// TestMatcher_FilteredRequest verifies a request carrying a filter spec
// goes through the filtered candidate query.
func TestMatcher_FilteredRequest(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	spec := filters.DefaultSpec().Merge("gender", "female")
	storageMock.On("FindCandidateProfilesFiltered", "user_A", chathub.DefaultCandidateLimit, spec).
		Return([]models.UserProfile{{UserID: "user_B"}}, nil)
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.ChatRoom")).Return(nil)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A", Filters: &spec}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateConnected, sessionA.State())
	storageMock.AssertCalled(t, "FindCandidateProfilesFiltered", "user_A", chathub.DefaultCandidateLimit, spec)
	storageMock.AssertNotCalled(t, "FindCandidateProfiles", mock.Anything, mock.Anything)
}

// TestMatcher_OfflinePartner checks that matching against an offline
// profile still connects the seeker; the partner side attaches when they
// next come online.
func TestMatcher_OfflinePartner(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{{UserID: "user_B"}}, nil)
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.ChatRoom")).Return(nil)

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateConnected, sessionA.State())
	assert.NotContains(t, hub.Sessions, "user_B", "offline partner must not get a session yet")
}

// TestMatcher_AttachDuringDeliveries runs a match attempt while the hub
// is busy fanning out deliveries, so the matcher's room attach and the
// hub's room-id reads overlap. Run with -race.
func TestMatcher_AttachDuringDeliveries(t *testing.T) {
	storageMock := new(MockStorage)
	hub := newTestHub(storageMock)
	matcher := chathub.NewMatcherService(hub, storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{{UserID: "user_B"}}, nil)
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.ChatRoom")).Return(nil)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Clients["user_A"] = clientA
	hub.Clients["user_B"] = clientB

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	go hub.Run()
	go matcher.Run()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.PubSubCh <- models.ChatMessage{RoomID: "unrelated-room", SenderID: "user_C", Type: models.MessageTypeText}
		}
	}()

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}

	<-done
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateConnected, sessionA.State())
	assert.NotEmpty(t, clientA.GetRoomID())
	assert.Equal(t, clientA.GetRoomID(), clientB.GetRoomID())
}

func TestMatcher_SaveRoomFailure(t *testing.T) {
	storageMock := new(MockStorage)
	hub, _ := startMatcher(storageMock)

	storageMock.On("FindCandidateProfiles", "user_A", chathub.DefaultCandidateLimit).
		Return([]models.UserProfile{{UserID: "user_B"}}, nil)
	storageMock.On("SaveRoom", mock.AnythingOfType("*models.ChatRoom")).Return(errors.New("db down"))

	clientA := newMockClient("user_A")
	hub.Clients["user_A"] = clientA

	sessionA := hub.SessionFor("user_A")
	assert.NoError(t, sessionA.StartSearch())

	hub.MatchRequestCh <- models.SearchRequest{UserID: "user_A"}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, chathub.StateDisconnected, sessionA.State())

	select {
	case msg := <-clientA.RecvChannel:
		assert.Equal(t, models.MessageTypeError, msg.Type)
	default:
		t.Error("seeker did not receive the failure notice")
	}
}
