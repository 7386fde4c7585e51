package adaptor

import (
	"net/http"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/utils"

	"go.uber.org/zap"
)

type PricingHandler struct {
	service usecase.PricingService
	log     *zap.Logger
}

func NewPricingHandler(service usecase.PricingService, log *zap.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		log:     log.With(zap.String("handler", "pricing")),
	}
}

// GetPrices handles GET /api/prices
func (h *PricingHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, h.service.GetPriceTable(r.Context()))
}

// Quote handles POST /api/quote
func (h *PricingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote")
		return
	}

	utils.ResponseSuccess(w, quote)
}
