package services

import (
	"errors"
	"fmt"
	"log"

	"fortune0-platform/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService is the attribution engine: it maps one inbound order to
// an affiliate via their referral code, computes the affiliate's commission
// and the platform's fee, and records the result exactly once per order id.
type CommissionService struct {
	DB       *gorm.DB
	Schedule *FeeSchedule
}

func NewCommissionService(db *gorm.DB, schedule *FeeSchedule) *CommissionService {
	return &CommissionService{DB: db, Schedule: schedule}
}

// AttributionResult is what the webhook adapter reports back to the caller.
type AttributionResult struct {
	Affiliate       string  `json:"affiliate"`
	OrderID         string  `json:"order_id"`
	Commission      float64 `json:"commission"`
	CommissionRate  float64 `json:"commission_rate"`
	PlatformFee     float64 `json:"platform_fee"`
	PlatformFeeRate float64 `json:"platform_fee_rate"`
}

// AttributeOrder runs the full attribution for one order.
//
// The commission insert (unique on order id) and the ledger credit execute
// in one transaction: a duplicate order id rolls everything back with zero
// side effects, and concurrent submissions of the same id end as exactly one
// success and one ErrDuplicateOrder. The affiliate row is re-read inside the
// transaction — no cached totals — because the fee tier depends on the
// current running total.
//
// The fee tier is evaluated against the affiliate's cumulative earnings
// *after* this commission is added, so crossing a threshold with this order
// already prices this order at the new band.
func (s *CommissionService) AttributeOrder(code string, orderTotal float64, orderID string) (*AttributionResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: discount code required", ErrValidation)
	}
	if orderTotal <= 0 {
		return nil, fmt.Errorf("%w: order total must be positive", ErrValidation)
	}
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id required", ErrValidation)
	}

	var result *AttributionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		aff, err := findByCode(tx, code)
		if err != nil {
			return err
		}

		commission := mulRound2(orderTotal, aff.CommissionRate)

		// Projected running total decides the fee band for this order.
		projected := decimal.NewFromFloat(aff.TotalEarned).Add(commission)
		feeRate := s.Schedule.RateFor(projected)
		platformFee := mulRound2(orderTotal, feeRate)

		commissionAmt, _ := commission.Float64()
		platformFeeAmt, _ := platformFee.Float64()

		row := models.Commission{
			AffiliateEmail:   aff.Email,
			OrderID:          orderID,
			OrderTotal:       orderTotal,
			CommissionAmount: commissionAmt,
			CommissionRate:   aff.CommissionRate,
			PlatformFee:      platformFeeAmt,
			PlatformFeeRate:  feeRate,
			Status:           models.CommissionStatusPending,
			DiscountCode:     code,
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateOrder
			}
			return err
		}

		if err := credit(tx, aff.Email, commissionAmt); err != nil {
			return err
		}

		if err := LogActivity(tx, aff.Email, "commission",
			fmt.Sprintf("$%.2f from order %s", commissionAmt, orderID)); err != nil {
			return err
		}

		result = &AttributionResult{
			Affiliate:       aff.Email,
			OrderID:         orderID,
			Commission:      commissionAmt,
			CommissionRate:  aff.CommissionRate,
			PlatformFee:     platformFeeAmt,
			PlatformFeeRate: feeRate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("💸 [Attribution] %s earned $%.2f on order %s (fee rate %.3f)",
		result.Affiliate, result.Commission, result.OrderID, result.PlatformFeeRate)
	return result, nil
}

// Recent returns the newest commissions for the dashboard, capped at limit.
func (s *CommissionService) Recent(limit int) ([]models.Commission, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Commission
	if err := s.DB.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
