package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// Stripe authenticates itself with the signature header, no session guard.
func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	r.Post("/api/webhooks/stripe", paymentHandler.StripeWebhook)
}
