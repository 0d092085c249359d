package models

import "time"

// AnonymousUser is a locally scoped pseudo-identity for visitors who have
// not registered. At most one active record exists per device key; the
// record is cleared once the visitor upgrades to a registered account.
type AnonymousUser struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	SessionActive bool      `json:"session_active"`
}
