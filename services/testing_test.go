package services

import (
	"path/filepath"
	"testing"

	"fortune0-platform/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database with the production schema.
// TranslateError matches main.go so duplicate-key behavior is identical.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Affiliate{},
		&models.Commission{},
		&models.Session{},
		&models.ReferralClick{},
		&models.Activity{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) *CommissionService {
	t.Helper()
	schedule, err := NewFeeSchedule(DefaultFeeTiers)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}
	return NewCommissionService(db, schedule)
}

// seedAffiliate inserts an affiliate directly, bypassing Register, so tests
// can control the rate and starting totals.
func seedAffiliate(t *testing.T, db *gorm.DB, email string, rate, earned float64) *models.Affiliate {
	t.Helper()
	aff := &models.Affiliate{
		Email:          email,
		ReferralCode:   "IK-" + email[:4],
		CommissionRate: rate,
		TotalEarned:    earned,
		IsActive:       true,
	}
	if err := db.Create(aff).Error; err != nil {
		t.Fatalf("seed affiliate: %v", err)
	}
	return aff
}
