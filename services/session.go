package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"fortune0-platform/models"

	"gorm.io/gorm"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 7 * 24 * time.Hour

type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// Create mints a session token for an email and persists it.
func (s *SessionService) Create(email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	sess := models.Session{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().UTC().Add(SessionTTL),
	}
	if err := s.DB.Create(&sess).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token to the email it was issued for. Expired or unknown
// tokens return ErrNotFound.
func (s *SessionService) Get(token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	var sess models.Session
	err := s.DB.Where("token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if sess.ExpiresAt.Before(time.Now().UTC()) {
		// Lazy cleanup; the sweeper catches the rest.
		s.DB.Delete(&sess)
		return "", ErrNotFound
	}
	return sess.Email, nil
}

// SweepExpired deletes sessions past their expiry. Called by the gocron job.
func (s *SessionService) SweepExpired() {
	res := s.DB.Where("expires_at < ?", time.Now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		log.Printf("[Sessions] sweep failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("🧹 [Sessions] swept %d expired sessions", res.RowsAffected)
	}
}
