package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"fortune0-platform/models"
	"fortune0-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	affiliates *services.AffiliateService
	sessions   *services.SessionService
}

// newTestEnv stands up the full route surface against a throwaway SQLite
// database. Webhook secrets come from the environment, so tests set them
// with t.Setenv before calling this.
func newTestEnv(t *testing.T) *testEnv {
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

	schedule, err := services.NewFeeSchedule(services.DefaultFeeTiers)
	if err != nil {
		t.Fatalf("build schedule: %v", err)
	}

	accounts := services.NewAccountService(db)
	sessions := services.NewSessionService(db)
	affiliates := services.NewAffiliateService(db)
	commissions := services.NewCommissionService(db, schedule)

	app := fiber.New()
	SetupAccountRoutes(app, accounts, sessions)
	SetupAffiliateRoutes(app, affiliates, accounts, sessions, commissions)
	SetupWebhookRoutes(app, commissions)

	return &testEnv{app: app, db: db, affiliates: affiliates, sessions: sessions}
}

// postJSON sends a JSON POST and decodes the JSON response body.
func (e *testEnv) postJSON(t *testing.T, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.do(t, req)
}

func (e *testEnv) getJSON(t *testing.T, path, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(t, req)
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 && json.Unmarshal(raw, &decoded) != nil {
		decoded = map[string]interface{}{"raw": string(raw)}
	}
	return resp.StatusCode, decoded
}

// join registers an affiliate through the public endpoint and returns the
// referral code and session token.
func (e *testEnv) join(t *testing.T, email string) (code, token string) {
	t.Helper()
	status, body := e.postJSON(t, "/api/join", map[string]string{"email": email}, nil)
	if status != http.StatusCreated {
		t.Fatalf("join %s: status %d, body %v", email, status, body)
	}
	code, _ = body["referral_code"].(string)
	token, _ = body["token"].(string)
	if code == "" || token == "" {
		t.Fatalf("join %s: missing code/token in %v", email, body)
	}
	return code, token
}
