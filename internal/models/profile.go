package models

import (
	"time"

	"github.com/lib/pq"
)

// UserProfile is the demographic row behind a registered identity: the
// attributes other users filter on, plus the caller's own preference
// ranges and the premium flag. One row per user.
type UserProfile struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`
	Email  string `gorm:"not null" json:"email"`

	// Attributes candidate queries match against. Height 0 means
	// undeclared and passes any height filter.
	Gender   string `gorm:"type:text" json:"gender"`
	Country  string `gorm:"type:text" json:"country"`
	Age      int    `json:"age"`
	Height   int    `json:"height"`
	Race     string `gorm:"type:text" json:"race"`
	Religion string `gorm:"type:text" json:"religion"`

	IsPremium bool `json:"is_premium"`

	// Own matching preferences, set during profile completion.
	AgeRangeMin int `json:"age_range_min"`
	AgeRangeMax int `json:"age_range_max"`
	HeightMin   int `json:"height_min"`
	HeightMax   int `json:"height_max"`

	Interests pq.StringArray `gorm:"type:text[]" json:"interests"`

	CreatedAt time.Time `json:"created_at"`
}
