package models

import "time"

// Affiliate is the ledger row for one partner: who they are, what code
// routes orders to them, and their lifetime totals. TotalEarned and
// TotalReferrals only ever grow, and only inside the attribution
// transaction — nothing else writes them.
type Affiliate struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	ReferralCode   string    `json:"referral_code" gorm:"uniqueIndex;not null"`
	CommissionRate float64   `json:"commission_rate" gorm:"default:0.10"`
	TotalEarned    float64   `json:"total_earned" gorm:"default:0"`
	TotalReferrals int       `json:"total_referrals" gorm:"default:0"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
}
