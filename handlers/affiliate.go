package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"fortune0-platform/middleware"
	"fortune0-platform/services"

	"github.com/gofiber/fiber/v2"
)

type joinRequest struct {
	Email string `json:"email"`
}

type registerAffiliateRequest struct {
	Email          string  `json:"email"`
	CommissionRate float64 `json:"commission_rate"`
}

func SetupAffiliateRoutes(app *fiber.App, affiliates *services.AffiliateService, accounts *services.AccountService, sessions *services.SessionService, commissions *services.CommissionService) {
	// 🔓 Self-service affiliate join — the public on-ramp, no auth.
	app.Post("/api/join", func(c *fiber.Ctx) error {
		var req joinRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
		}

		aff, created, err := affiliates.Register(req.Email, services.DefaultCommissionRate)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
			}
			return serverError(c, err)
		}

		clicks, err := affiliates.CountClicks(aff.ReferralCode)
		if err != nil {
			return serverError(c, err)
		}

		resp := fiber.Map{
			"email":           aff.Email,
			"referral_code":   aff.ReferralCode,
			"commission_rate": aff.CommissionRate,
			"total_earned":    aff.TotalEarned,
			"total_referrals": aff.TotalReferrals,
			"short_url":       "/r/" + aff.ReferralCode,
			"clicks":          clicks,
			"returning":       !created,
		}
		if !created {
			return c.JSON(resp)
		}

		// New affiliates also get a platform account and a session so the
		// join page can drop them straight into the dashboard.
		user, _, err := accounts.Signup(aff.Email)
		if err != nil && !errors.Is(err, services.ErrValidation) {
			return serverError(c, err)
		}
		token, err := sessions.Create(aff.Email)
		if err != nil {
			return serverError(c, err)
		}
		if err := services.LogActivity(affiliates.DB, aff.Email, "affiliate_joined", "Self-service: "+aff.ReferralCode); err != nil {
			return serverError(c, err)
		}
		resp["token"] = token
		if user != nil {
			resp["license_key"] = user.LicenseKey
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	})

	// 🔓 Referral short link: log the click, then send the visitor to the
	// join page with the code pre-filled. Unknown codes still redirect —
	// the visitor can sign up fresh.
	app.Get("/r/:code", func(c *fiber.Ctx) error {
		code := c.Params("code")
		if code == "" {
			return c.Redirect("/", fiber.StatusFound)
		}

		visitorRaw := c.IP() + c.Get("User-Agent")
		sum := sha256.Sum256([]byte(visitorRaw))
		visitorHash := hex.EncodeToString(sum[:])[:16]

		sourceDomain := c.Get("Host")
		if sourceDomain == "" {
			sourceDomain = "direct"
		}
		if err := affiliates.RecordClick(code, sourceDomain, visitorHash); err != nil {
			return serverError(c, err)
		}

		if _, err := affiliates.FindByCode(code); err != nil {
			return c.Redirect("/join", fiber.StatusFound)
		}
		return c.Redirect(fmt.Sprintf("/join?ref=%s", code), fiber.StatusFound)
	})

	// 🔓 Public click/earnings stats for one code.
	app.Get("/api/affiliate/stats", func(c *fiber.Ctx) error {
		code := c.Query("code")
		if code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Code required"})
		}
		stats, err := affiliates.Stats(code)
		if err != nil {
			if errors.Is(err, services.ErrUnknownCode) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
			}
			return serverError(c, err)
		}
		return c.JSON(stats)
	})

	// 🔓 The fee schedule partners are quoted.
	app.Get("/api/fee-tiers", func(c *fiber.Ctx) error {
		return c.JSON(commissions.Schedule.Tiers())
	})

	// 🔐 Operator endpoints. Per-route auth so the public /api routes above
	// stay open.
	auth := middleware.SessionAuthMiddleware(sessions)

	app.Get("/api/affiliates", auth, func(c *fiber.Ctx) error {
		affs, err := affiliates.List()
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(affs)
	})

	app.Post("/api/affiliates", auth, func(c *fiber.Ctx) error {
		var req registerAffiliateRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email required"})
		}
		aff, created, err := affiliates.Register(req.Email, req.CommissionRate)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email required"})
			}
			return serverError(c, err)
		}
		if !created {
			return c.JSON(aff)
		}
		operator := c.Locals("email").(string)
		detail := fmt.Sprintf("%s → %s", aff.Email, aff.ReferralCode)
		if err := services.LogActivity(affiliates.DB, operator, "affiliate_registered", detail); err != nil {
			return serverError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(aff)
	})

	app.Get("/api/commissions", auth, func(c *fiber.Ctx) error {
		rows, err := commissions.Recent(100)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(rows)
	})
}
