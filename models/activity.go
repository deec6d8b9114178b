package models

import "time"

// Activity is the append-only audit trail shown on the dashboard
// (signups, logins, affiliate joins, commissions).
type Activity struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserEmail string    `json:"user_email" gorm:"index"`
	Action    string    `json:"action" gorm:"not null"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
