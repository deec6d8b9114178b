package utils

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLicenseTTL matches the trial window handed out at signup.
const DefaultLicenseTTL = 28 * 24 * time.Hour

var (
	ErrLicenseMalformed = errors.New("license key malformed")
	ErrLicenseSignature = errors.New("license key signature invalid")
	ErrLicenseExpired   = errors.New("license key expired")
)

func licenseSecret() []byte {
	secret := os.Getenv("F0_LICENSE_SECRET")
	if secret == "" {
		secret = "fortune0-dev-secret-2026"
		log.Println("⚠️  F0_LICENSE_SECRET not set, using dev secret")
	}
	return []byte(secret)
}

// IssueLicenseKey mints a signed, self-describing, time-limited key for an
// account. HS256 JWT with the email as subject.
func IssueLicenseKey(email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultLicenseTTL
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strings.ToLower(email),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "fortune0",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(licenseSecret())
}

// ValidateLicenseKey checks signature and expiry and returns the email the
// key was issued to.
func ValidateLicenseKey(key string) (string, error) {
	if key == "" {
		return "", ErrLicenseMalformed
	}
	parsed, err := jwt.ParseWithClaims(key, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrLicenseSignature
		}
		return licenseSecret(), nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrLicenseExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrLicenseSignature
	default:
		return "", ErrLicenseMalformed
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrLicenseMalformed
	}
	return claims.Subject, nil
}
