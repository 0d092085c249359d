package storage

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"strangerlink/backend/internal/models"
)

// SaveRoom persists a chat room.
func (s *Service) SaveRoom(room *models.ChatRoom) error {
	return s.DB.Save(room).Error
}

// CloseRoom marks a room inactive and stamps EndedAt. The row itself is
// kept as an audit trail.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.ChatRoom{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (s *Service) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom

	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// GetActiveRoomIDForUser finds the active room the user participates in,
// if any. Returns "" without error when the user is not in a room.
func (s *Service) GetActiveRoomIDForUser(userID string) (string, error) {
	var room models.ChatRoom

	err := s.DB.Where("is_active = ?", true).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find active room for user %s: %v", userID, err)
		return "", err
	}

	return room.RoomID, nil
}

// GetActiveRoomIDs returns every RoomID currently marked active.
func (s *Service) GetActiveRoomIDs() ([]string, error) {
	var roomIDs []string

	if err := s.DB.Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Pluck("room_id", &roomIDs).Error; err != nil {
		log.Printf("ERROR: Failed to retrieve active RoomIDs: %v", err)
		return nil, err
	}
	return roomIDs, nil
}

// SaveMessage appends a message row and backfills the generated id into
// the wire struct so it can be published.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	history := models.ChatHistory{
		RoomID:   msg.RoomID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
		Type:     msg.Type,
	}

	if err := s.DB.Create(&history).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}

	msg.ID = history.ID
	msg.CreatedAt = history.CreatedAt
	return nil
}

// GetChatHistory returns the ordered message log for a room.
func (s *Service) GetChatHistory(roomID string) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	if err := s.DB.Where("room_id = ?", roomID).Order("created_at asc").Find(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}
	return history, nil
}

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = "new"
	}

	if err := s.DB.Create(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to save complaint for room %s: %v", complaint.RoomID, err)
		return err
	}
	return nil
}

// GetComplaintsByStatus lists complaints in the given status, oldest first.
func (s *Service) GetComplaintsByStatus(status string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Where("status = ?", status).Order("created_at asc").Find(&complaints).Error
	return complaints, err
}

// PublishMessage broadcasts a message on the room's Redis channel.
func (s *Service) PublishMessage(roomID string, msg models.ChatMessage) error {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, channelForRoom(roomID), string(msgBytes)).Err()
}

// SubscribeToAllRooms opens a pattern subscription covering every room
// channel. The hub fans messages out to the clients it holds.
func (s *Service) SubscribeToAllRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "room:*")
}

func channelForRoom(roomID string) string {
	return "room:" + roomID
}
