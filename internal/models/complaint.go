package models

import "gorm.io/gorm"

// Complaint is a report filed by one chat participant against the other.
type Complaint struct {
	gorm.Model

	ReporterID string `gorm:"type:text;not null"`
	TargetID   string `gorm:"type:text;not null"`
	RoomID     string `gorm:"type:uuid;index"`
	Reason     string `gorm:"type:text"`
	Status     string // "new", "processed", "dismissed"
}
