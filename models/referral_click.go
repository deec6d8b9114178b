package models

import "time"

// ReferralClick logs one hit on a /r/<code> short link. VisitorHash is a
// truncated SHA-256 of IP+User-Agent so we can count unique-ish visitors
// without storing either.
type ReferralClick struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ReferralCode string    `json:"referral_code" gorm:"index;not null"`
	SourceDomain string    `json:"source_domain"`
	VisitorHash  string    `json:"visitor_hash"`
	Converted    bool      `json:"converted" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
}
