package services

import (
	"errors"
	"fmt"
	"strings"

	"fortune0-platform/models"
	"fortune0-platform/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// DefaultCommissionRate is the cut new affiliates earn on attributed orders.
const DefaultCommissionRate = 0.10

var validate = validator.New()

type AffiliateService struct {
	DB *gorm.DB
}

func NewAffiliateService(db *gorm.DB) *AffiliateService {
	return &AffiliateService{DB: db}
}

// AffiliateStats is the public click/earnings view for one code.
type AffiliateStats struct {
	Code           string  `json:"code"`
	Email          string  `json:"email"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	ConversionRate float64 `json:"conversion_rate"`
	TotalEarned    float64 `json:"total_earned"`
	TotalReferrals int     `json:"total_referrals"`
	CommissionRate float64 `json:"commission_rate"`
}

// Register creates an affiliate for an email, or returns the existing row
// unchanged — registration is idempotent, not an error. rate <= 0 falls back
// to the default.
func (s *AffiliateService) Register(email string, rate float64) (*models.Affiliate, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, false, fmt.Errorf("%w: valid email required", ErrValidation)
	}
	if rate <= 0 {
		rate = DefaultCommissionRate
	}

	var existing models.Affiliate
	err := s.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	aff := models.Affiliate{
		Email:          email,
		ReferralCode:   utils.ReferralCode(email),
		CommissionRate: rate,
		IsActive:       true,
	}
	if err := s.DB.Create(&aff).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent registration; return theirs.
			if ferr := s.DB.Where("email = ?", email).First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	return &aff, true, nil
}

// FindByCode resolves a referral code to its affiliate by exact match.
func (s *AffiliateService) FindByCode(code string) (*models.Affiliate, error) {
	return findByCode(s.DB, code)
}

func findByCode(db *gorm.DB, code string) (*models.Affiliate, error) {
	var aff models.Affiliate
	err := db.Where("referral_code = ?", code).First(&aff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownCode
	}
	if err != nil {
		return nil, err
	}
	return &aff, nil
}

// credit applies one attributed commission to the ledger. Runs an atomic SQL
// increment so concurrent attributions never lose updates, and takes the
// caller's transaction so the ledger and the commission row commit together.
func credit(tx *gorm.DB, email string, amount float64) error {
	res := tx.Model(&models.Affiliate{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"total_earned":    gorm.Expr("total_earned + ?", amount),
			"total_referrals": gorm.Expr("total_referrals + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ledger credit matched no affiliate %q", email)
	}
	return nil
}

// List returns all affiliates, biggest earners first.
func (s *AffiliateService) List() ([]models.Affiliate, error) {
	var affs []models.Affiliate
	if err := s.DB.Order("total_earned DESC").Find(&affs).Error; err != nil {
		return nil, err
	}
	return affs, nil
}

// Stats assembles the public stats payload for one referral code.
func (s *AffiliateService) Stats(code string) (*AffiliateStats, error) {
	aff, err := s.FindByCode(code)
	if err != nil {
		return nil, err
	}

	var clicks, conversions int64
	if err := s.DB.Model(&models.ReferralClick{}).
		Where("referral_code = ?", code).Count(&clicks).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.ReferralClick{}).
		Where("referral_code = ? AND converted = ?", code, true).Count(&conversions).Error; err != nil {
		return nil, err
	}

	stats := &AffiliateStats{
		Code:           code,
		Email:          aff.Email,
		Clicks:         clicks,
		Conversions:    conversions,
		TotalEarned:    aff.TotalEarned,
		TotalReferrals: aff.TotalReferrals,
		CommissionRate: aff.CommissionRate,
	}
	if clicks > 0 {
		stats.ConversionRate = roundTo(float64(conversions)/float64(clicks)*100, 1)
	}
	return stats, nil
}

// CountClicks returns how many times a code's short link was hit.
func (s *AffiliateService) CountClicks(code string) (int64, error) {
	var clicks int64
	err := s.DB.Model(&models.ReferralClick{}).
		Where("referral_code = ?", code).Count(&clicks).Error
	return clicks, err
}

// RecordClick logs a short-link hit. Unknown codes are logged too — the
// redirect still happens and the click may convert into a fresh signup.
func (s *AffiliateService) RecordClick(code, sourceDomain, visitorHash string) error {
	return s.DB.Create(&models.ReferralClick{
		ReferralCode: code,
		SourceDomain: sourceDomain,
		VisitorHash:  visitorHash,
	}).Error
}
