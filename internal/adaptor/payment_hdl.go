package adaptor

import (
	"io"
	"net/http"

	"phone-repair/internal/dto/response"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/utils"

	"go.uber.org/zap"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 64 << 10

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// StripeWebhook handles POST /api/webhooks/stripe. The body must be read raw,
// the signature covers the exact bytes.
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		utils.ResponseBadRequest(w, "Unreadable webhook body", nil)
		return
	}

	outcome, err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		handleServiceError(w, h.log, err, "handle webhook")
		return
	}

	h.log.Debug("Webhook acknowledged", zap.String("outcome", outcome))
	utils.ResponseSuccess(w, response.WebhookResponse{Received: true})
}
