package chathub

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"strangerlink/backend/internal/models"
	"strangerlink/backend/internal/storage"
)

// DefaultCandidateLimit caps the candidate pool queried per attempt.
const DefaultCandidateLimit = 10

// MatcherService picks chat partners. Each request is a single attempt:
// query a bounded candidate pool excluding the seeker, pick one
// uniformly at random, open a room. There is no retry, no fairness and
// no exclusion memory across attempts; the same partner can be picked
// repeatedly. Interests are advisory and never constrain the query.
type MatcherService struct {
	Hub            *ManagerService
	Storage        storage.Storage
	CandidateLimit int
}

// NewMatcherService creates a new Matcher.
func NewMatcherService(hub *ManagerService, s storage.Storage) *MatcherService {
	return &MatcherService{
		Hub:            hub,
		Storage:        s,
		CandidateLimit: DefaultCandidateLimit,
	}
}

// Run consumes match requests from the hub until the channel closes.
func (m *MatcherService) Run() {
	log.Println("Matcher Service started.")
	for req := range m.Hub.MatchRequestCh {
		m.findMatch(req)
	}
}

// findMatch performs one matchmaking attempt for the request.
func (m *MatcherService) findMatch(req models.SearchRequest) {
	session := m.Hub.SessionFor(req.UserID)
	log.Printf("Match request from %s (interests: %v, filtered: %t)",
		req.UserID, req.Interests, req.Filters != nil)

	var (
		candidates []models.UserProfile
		err        error
	)
	if req.Filters != nil {
		candidates, err = m.Storage.FindCandidateProfilesFiltered(req.UserID, m.CandidateLimit, *req.Filters)
	} else {
		candidates, err = m.Storage.FindCandidateProfiles(req.UserID, m.CandidateLimit)
	}
	if err != nil {
		log.Printf("ERROR: Candidate query failed for %s: %v", req.UserID, err)
	}

	if err != nil || len(candidates) == 0 {
		if ferr := session.FailSearch(); ferr != nil {
			log.Printf("WARNING: %v", ferr)
		}
		m.Hub.notify(req.UserID, models.ChatMessage{
			SenderID: models.SystemSenderID,
			Type:     models.MessageTypeNoMatch,
			Content:  "No users available right now. Please try again later.",
		})
		return
	}

	pick := candidates[rand.Intn(len(candidates))]

	roomID := uuid.New().String()
	newRoom := &models.ChatRoom{
		RoomID:    roomID,
		User1ID:   req.UserID,
		User2ID:   pick.UserID,
		IsActive:  true,
		StartedAt: time.Now(),
	}
	if err := m.Storage.SaveRoom(newRoom); err != nil {
		log.Printf("ERROR: Failed to save new room: %v", err)
		if ferr := session.FailSearch(); ferr != nil {
			log.Printf("WARNING: %v", ferr)
		}
		m.Hub.notifyError(req.UserID, "Failed to connect. Please try again.")
		return
	}

	if err := session.Connect(roomID, pick.UserID); err != nil {
		// The seeker disconnected mid-attempt; release the room.
		log.Printf("WARNING: %v", err)
		if cerr := m.Storage.CloseRoom(roomID); cerr != nil {
			log.Printf("ERROR: Failed to close abandoned room %s: %v", roomID, cerr)
		}
		return
	}
	m.Hub.attachClientToRoom(req.UserID, roomID)

	// The partner is picked from the profile table, not from a waiting
	// queue; attach their side only if they are online.
	if _, online := m.Hub.clientFor(pick.UserID); online {
		m.Hub.SessionFor(pick.UserID).Attach(roomID, req.UserID)
		m.Hub.attachClientToRoom(pick.UserID, roomID)
	}

	matchMessage := models.ChatMessage{
		RoomID:   roomID,
		SenderID: models.SystemSenderID,
		Type:     models.MessageTypeMatchFound,
		Content:  "You're now chatting with a random stranger. Say hi!",
	}
	m.Hub.notify(req.UserID, matchMessage)
	m.Hub.notify(pick.UserID, matchMessage)

	log.Printf("Match found: %s and %s in room %s", req.UserID, pick.UserID, roomID)
}
