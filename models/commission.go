package models

import "time"

const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
	CommissionStatusVoid    = "void"
)

// Commission records one attributed order. OrderID carries a unique index:
// it is the idempotency key, so a webhook retry hits the constraint instead
// of crediting the affiliate twice. Rows are never updated after insert;
// status transitions (paid/void) happen in payout tooling, not here.
type Commission struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	AffiliateEmail   string    `json:"affiliate_email" gorm:"index;not null"`
	OrderID          string    `json:"order_id" gorm:"uniqueIndex;not null"`
	OrderTotal       float64   `json:"order_total" gorm:"not null"`
	CommissionAmount float64   `json:"commission_amount" gorm:"not null"`
	CommissionRate   float64   `json:"commission_rate" gorm:"not null"`
	PlatformFee      float64   `json:"platform_fee" gorm:"not null;default:0"`
	PlatformFeeRate  float64   `json:"platform_fee_rate" gorm:"not null;default:0.05"`
	Status           string    `json:"status" gorm:"default:'pending'"`
	DiscountCode     string    `json:"discount_code"`
	CreatedAt        time.Time `json:"created_at"`
}
