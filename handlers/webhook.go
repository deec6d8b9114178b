package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"fortune0-platform/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

type orderWebhookRequest struct {
	DiscountCode string  `json:"discount_code"`
	OrderTotal   float64 `json:"order_total"`
	OrderID      string  `json:"order_id"`
}

// SetupWebhookRoutes wires the inbound order-attribution entry points.
// These are partner-facing: no session auth, payload authenticity comes from
// signatures instead.
func SetupWebhookRoutes(app *fiber.App, engine *services.CommissionService) {
	orderSecret := os.Getenv("ORDER_WEBHOOK_SECRET")
	stripeSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if orderSecret == "" {
		log.Println("⚠️  ORDER_WEBHOOK_SECRET not set — order webhook signature checks disabled")
	}
	if stripeSecret == "" {
		log.Println("⚠️  STRIPE_WEBHOOK_SECRET not set — Stripe webhook signature checks disabled")
	}

	// Generic store webhook (Shopify-style payload).
	app.Post("/api/webhooks/order", func(c *fiber.Ctx) error {
		body := c.Body()

		// Signature is verified against the raw body before any field is
		// trusted. No secret configured means the operator explicitly opted
		// out (local dev); a configured secret is always enforced.
		if orderSecret != "" && !verifyHMAC(body, c.Get("X-Webhook-Signature"), orderSecret) {
			log.Printf("🚫 [Webhook] bad signature on order webhook from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
		}

		var req orderWebhookRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
		}
		req.DiscountCode = strings.TrimSpace(req.DiscountCode)
		if req.DiscountCode == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Discount code required"})
		}
		if req.OrderTotal <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Order total must be positive"})
		}
		if req.OrderID == "" {
			req.OrderID = synthesizeOrderID()
		}

		result, err := engine.AttributeOrder(req.DiscountCode, req.OrderTotal, req.OrderID)
		if err != nil {
			return attributionError(c, err, req.DiscountCode)
		}
		return c.JSON(fiber.Map{
			"attributed":   true,
			"affiliate":    result.Affiliate,
			"commission":   result.Commission,
			"platform_fee": result.PlatformFee,
			"order_id":     result.OrderID,
		})
	})

	// Stripe webhook. Always answers 2xx for outcomes Stripe must not retry
	// (duplicates, unknown codes); non-2xx is reserved for bad signatures
	// and real faults.
	app.Post("/api/webhooks/stripe", func(c *fiber.Ctx) error {
		body := c.Body()

		var event stripe.Event
		if stripeSecret != "" {
			verified, err := webhook.ConstructEvent(body, c.Get("Stripe-Signature"), stripeSecret)
			if err != nil {
				log.Printf("🚫 [Webhook] bad Stripe signature from %s: %v", c.IP(), err)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid signature"})
			}
			event = verified
		} else if err := json.Unmarshal(body, &event); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
		}

		if event.Type != "checkout.session.completed" {
			return c.JSON(fiber.Map{"received": true})
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid event payload"})
		}

		code := session.Metadata["discount_code"]
		if code == "" {
			// Checkout without a referral code — nothing to attribute.
			return c.JSON(fiber.Map{"received": true, "attributed": false})
		}

		orderID := session.ID
		if orderID == "" {
			orderID = synthesizeOrderID()
		}
		total := float64(session.AmountTotal) / 100

		result, err := engine.AttributeOrder(code, total, orderID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateOrder):
				// Stripe redelivered an event we already processed.
				return c.JSON(fiber.Map{"received": true, "attributed": true, "duplicate": true})
			case errors.Is(err, services.ErrUnknownCode), errors.Is(err, services.ErrValidation):
				log.Printf("⚠️  [Webhook] Stripe event %s not attributable: %v", event.ID, err)
				return c.JSON(fiber.Map{"received": true, "attributed": false})
			default:
				return serverError(c, err)
			}
		}
		return c.JSON(fiber.Map{
			"received":     true,
			"attributed":   true,
			"affiliate":    result.Affiliate,
			"commission":   result.Commission,
			"platform_fee": result.PlatformFee,
			"order_id":     result.OrderID,
		})
	})
}

// attributionError maps engine outcomes onto the wire contract of the
// generic order webhook.
func attributionError(c *fiber.Ctx, err error, code string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrUnknownCode):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"attributed": false,
			"error":      fmt.Sprintf("No affiliate for code '%s'", code),
		})
	case errors.Is(err, services.ErrDuplicateOrder):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"attributed": false,
			"error":      "Duplicate order ID",
		})
	default:
		return serverError(c, err)
	}
}

// synthesizeOrderID covers sources that don't send an order id. Random, not
// a counter, so restarts can't mint colliding ids.
func synthesizeOrderID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:8])
}

// verifyHMAC checks a hex-encoded HMAC-SHA256 of the raw payload.
func verifyHMAC(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
