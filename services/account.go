package services

import (
	"errors"
	"fmt"
	"strings"

	"fortune0-platform/models"
	"fortune0-platform/utils"

	"gorm.io/gorm"
)

type AccountService struct {
	DB *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

// Signup creates a free account with a derived referral code and a fresh
// license key. Returning emails just get logged in (created == false).
func (s *AccountService) Signup(email string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, false, fmt.Errorf("%w: valid email required", ErrValidation)
	}

	var existing models.User
	err := s.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if lerr := LogActivity(s.DB, email, "login", "Returning user"); lerr != nil {
			return nil, false, lerr
		}
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	licenseKey, err := utils.IssueLicenseKey(email, utils.DefaultLicenseTTL)
	if err != nil {
		return nil, false, err
	}
	user := models.User{
		Email:        email,
		ReferralCode: utils.ReferralCode(email),
		LicenseKey:   licenseKey,
		Tier:         models.TierFree,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if ferr := s.DB.Where("email = ?", email).First(&existing).Error; ferr == nil {
				return &existing, false, nil
			}
		}
		return nil, false, err
	}
	if err := LogActivity(s.DB, email, "signup", "New account: "+user.ReferralCode); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// Login authenticates with a license key. The key must verify, be unexpired,
// and have been issued to the email presented.
func (s *AccountService) Login(email, key string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || key == "" {
		return fmt.Errorf("%w: email and key required", ErrValidation)
	}
	issuedTo, err := utils.ValidateLicenseKey(key)
	if err != nil {
		return err
	}
	if issuedTo != email {
		return fmt.Errorf("%w: key doesn't match email", utils.ErrLicenseSignature)
	}
	return LogActivity(s.DB, email, "login", "License key auth")
}

// FindUser returns the account for an email.
func (s *AccountService) FindUser(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", strings.ToLower(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DashboardStats aggregates the operator view: platform-wide revenue plus
// the caller's recent activity.
type DashboardStats struct {
	Affiliates        int64             `json:"affiliates"`
	Commissions       int64             `json:"commissions"`
	AttributedRevenue float64           `json:"attributed_revenue"`
	AffiliatePayouts  float64           `json:"affiliate_payouts"`
	PlatformRevenue   float64           `json:"platform_revenue"`
	Activity          []models.Activity `json:"activity"`
}

func (s *AccountService) Stats(email string) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.DB.Model(&models.Affiliate{}).Count(&stats.Affiliates).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Commission{}).Count(&stats.Commissions).Error; err != nil {
		return nil, err
	}

	var sums struct {
		Revenue float64
		Payouts float64
		Fees    float64
	}
	err := s.DB.Model(&models.Commission{}).
		Select("COALESCE(SUM(order_total),0) AS revenue, COALESCE(SUM(commission_amount),0) AS payouts, COALESCE(SUM(platform_fee),0) AS fees").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	stats.AttributedRevenue = roundTo(sums.Revenue, 2)
	stats.AffiliatePayouts = roundTo(sums.Payouts, 2)
	stats.PlatformRevenue = roundTo(sums.Fees, 2)

	if err := s.DB.Where("user_email = ?", email).
		Order("created_at DESC").Limit(20).
		Find(&stats.Activity).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
