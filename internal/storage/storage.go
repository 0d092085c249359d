package storage

import (
	"context"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"strangerlink/backend/internal/filters"
	"strangerlink/backend/internal/models"
)

var ErrRoomNotFound = errors.New("chat room not found")

// Storage is the persistence surface consumed by the hub, the matcher
// and the HTTP handlers.
type Storage interface {
	SaveUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)

	SaveProfile(profile *models.UserProfile) error
	GetProfileByUserID(userID string) (*models.UserProfile, error)
	SetPremium(userID string, premium bool) error
	FindCandidateProfiles(excludeUserID string, limit int) ([]models.UserProfile, error)
	FindCandidateProfilesFiltered(excludeUserID string, limit int, spec filters.Spec) ([]models.UserProfile, error)

	SaveRoom(room *models.ChatRoom) error
	CloseRoom(roomID string) error
	GetRoomByID(roomID string) (*models.ChatRoom, error)
	GetActiveRoomIDForUser(userID string) (string, error)
	GetActiveRoomIDs() ([]string, error)

	SaveMessage(msg *models.ChatMessage) error
	GetChatHistory(roomID string) ([]models.ChatHistory, error)

	SaveComplaint(complaint *models.Complaint) error

	PublishMessage(roomID string, msg models.ChatMessage) error
	SubscribeToAllRooms() *redis.PubSub
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser persists a registered identity.
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveProfile persists the demographic row for a user. The unique index
// on user_id keeps it to one row per identity.
func (s *Service) SaveProfile(profile *models.UserProfile) error {
	return s.DB.Save(profile).Error
}

func (s *Service) GetProfileByUserID(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.DB.Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetPremium flips the premium flag on an existing profile row.
func (s *Service) SetPremium(userID string, premium bool) error {
	result := s.DB.Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Update("is_premium", premium)
	if result.Error != nil {
		log.Printf("ERROR: Failed to update premium flag for user %s: %v", userID, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindCandidateProfiles returns up to limit profiles excluding the given
// user, in no particular order. The caller picks one at random.
func (s *Service) FindCandidateProfiles(excludeUserID string, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	err := s.DB.Where("user_id <> ?", excludeUserID).
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		log.Printf("ERROR: Failed to query candidate profiles: %v", err)
		return nil, err
	}
	return profiles, nil
}

// FindCandidateProfilesFiltered is the premium variant: categorical
// fields constrain when non-empty, the age range always applies, and the
// height range applies only to profiles that declare a height.
func (s *Service) FindCandidateProfilesFiltered(excludeUserID string, limit int, spec filters.Spec) ([]models.UserProfile, error) {
	spec = spec.Normalize()

	q := s.DB.Where("user_id <> ?", excludeUserID).
		Where("age BETWEEN ? AND ?", spec.AgeRange[0], spec.AgeRange[1]).
		Where("(height = 0 OR height BETWEEN ? AND ?)", spec.HeightRange[0], spec.HeightRange[1])

	if spec.Gender != "" {
		q = q.Where("gender = ?", spec.Gender)
	}
	if spec.Country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", spec.Country)
	}
	if spec.Race != "" {
		q = q.Where("LOWER(race) = LOWER(?)", spec.Race)
	}
	if spec.Religion != "" {
		q = q.Where("LOWER(religion) = LOWER(?)", spec.Religion)
	}

	var profiles []models.UserProfile
	if err := q.Limit(limit).Find(&profiles).Error; err != nil {
		log.Printf("ERROR: Failed to query filtered candidate profiles: %v", err)
		return nil, err
	}
	return profiles, nil
}
