package models

import "time"

// Session is a bearer token for the platform API. Stored in the database
// (not a process-local map) so logins survive restarts; the sweeper worker
// deletes expired rows.
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
