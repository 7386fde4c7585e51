package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/payment"
	"phone-repair/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Availability *AvailabilityHandler
	Pricing      *PricingHandler
	Booking      *BookingHandler
	Payment      *PaymentHandler
	Listing      *ListingHandler
	Phone        *PhoneHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		User:         NewUserHandler(service.User, log),
		Availability: NewAvailabilityHandler(service.Availability, log),
		Pricing:      NewPricingHandler(service.Pricing, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Payment:      NewPaymentHandler(service.Payment, log),
		Listing:      NewListingHandler(service.Listing, log),
		Phone:        NewPhoneHandler(service.Phone, log),
	}
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// decodeStrict is decodeJSON that also rejects unknown fields.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := utils.DecodeStrict(r, dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", err.Error())
		return false
	}
	return true
}

// pageQuery reads ?page=&perPage= with defaults.
func pageQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("perPage"), 10),
	}
}

// handleServiceError maps service errors onto the HTTP error envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var verr *usecase.ValidationError

	switch {
	case errors.As(err, &verr):
		log.Warn(operation+" validation failed", zap.Error(err))
		var details any
		if len(verr.Fields) > 0 {
			details = verr.Fields
		}
		utils.ResponseBadRequest(w, verr.Message, details)

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", nil)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, "Invalid credentials")

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, "Forbidden")

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Not found")

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, conflictMessage(err))

	case errors.Is(err, payment.ErrNotConfigured):
		log.Error(operation+" failed - payments not configured", zap.Error(err))
		utils.ResponseError(w, http.StatusServiceUnavailable, "Online payment is not available", nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// conflictMessage keeps the service's description, which names what clashed.
func conflictMessage(err error) string {
	suffix := ": " + usecase.ErrConflict.Error()
	if msg := err.Error(); strings.HasSuffix(msg, suffix) {
		return strings.TrimSuffix(msg, suffix)
	}
	return "Conflict"
}

func message(text string) response.MessageResponse {
	return response.MessageResponse{Success: true, Message: text}
}
