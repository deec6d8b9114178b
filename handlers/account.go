package handlers

import (
	"errors"

	"fortune0-platform/middleware"
	"fortune0-platform/services"
	"fortune0-platform/utils"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email string `json:"email"`
	Key   string `json:"key"`
}

func SetupAccountRoutes(app *fiber.App, accounts *services.AccountService, sessions *services.SessionService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "fortune0",
			"version": "1.0.0",
		})
	})

	app.Post("/api/signup", func(c *fiber.Ctx) error {
		var req signupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
		}

		user, created, err := accounts.Signup(req.Email)
		if err != nil {
			if errors.Is(err, services.ErrValidation) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email required"})
			}
			return serverError(c, err)
		}

		token, err := sessions.Create(user.Email)
		if err != nil {
			return serverError(c, err)
		}

		resp := fiber.Map{
			"token":         token,
			"email":         user.Email,
			"referral_code": user.ReferralCode,
			"tier":          user.Tier,
			"new":           created,
		}
		if created {
			resp["license_key"] = user.LicenseKey
		}
		return c.JSON(resp)
	})

	app.Post("/api/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and key required"})
		}

		err := accounts.Login(req.Email, req.Key)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and key required"})
			case errors.Is(err, utils.ErrLicenseExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Expired"})
			case errors.Is(err, utils.ErrLicenseSignature), errors.Is(err, utils.ErrLicenseMalformed):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid license key"})
			default:
				return serverError(c, err)
			}
		}

		token, err := sessions.Create(req.Email)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"token": token, "email": req.Email})
	})

	// Auth is attached per-route, not as group middleware: a USE handler on
	// /api would also gate the public join/stats/webhook routes registered
	// after this function runs.
	auth := middleware.SessionAuthMiddleware(sessions)

	app.Get("/api/me", auth, func(c *fiber.Ctx) error {
		email := c.Locals("email").(string)
		user, err := accounts.FindUser(email)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
			}
			return serverError(c, err)
		}
		return c.JSON(user)
	})

	app.Get("/api/stats", auth, func(c *fiber.Ctx) error {
		email := c.Locals("email").(string)
		stats, err := accounts.Stats(email)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(stats)
	})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}
