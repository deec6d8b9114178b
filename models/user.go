package models

import "time"

const (
	TierFree = "free"
	TierPro  = "pro"
)

// User is a platform account. Every user gets a referral code at signup so
// the same email resolves to the same code whether they arrive via /api/signup
// or the self-service affiliate join.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	ReferralCode string    `json:"referral_code" gorm:"uniqueIndex;not null"`
	LicenseKey   string    `json:"license_key"`
	Tier         string    `json:"tier" gorm:"default:'free'"`
	CreatedAt    time.Time `json:"created_at"`
}
