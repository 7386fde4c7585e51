package adaptor

import (
	"net/http"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service usecase.AvailabilityService
	log     *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log.With(zap.String("handler", "availability")),
	}
}

// ==================== PUBLIC ====================

// GetAvailability handles GET /api/availability. It answers 200 even when degraded.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, h.service.GetAvailability(r.Context()))
}

// ListUpcomingDays handles GET /api/available-days. It answers 200 even when degraded.
func (h *AvailabilityHandler) ListUpcomingDays(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, h.service.ListUpcomingDays(r.Context()))
}

// GetHours handles GET /api/available-hours
func (h *AvailabilityHandler) GetHours(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, h.service.GetHours(r.Context()))
}

// ==================== ADMIN ====================

// ListAllDays handles GET /api/admin/available-days
func (h *AvailabilityHandler) ListAllDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.ListAllDays(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list all days")
		return
	}

	utils.ResponseSuccess(w, days)
}

// UpsertDay handles POST /api/admin/available-days
func (h *AvailabilityHandler) UpsertDay(w http.ResponseWriter, r *http.Request) {
	var req request.AvailableDayRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	day, err := h.service.UpsertDay(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "save day")
		return
	}

	utils.ResponseSuccess(w, day)
}

// UpdateDay handles PUT /api/admin/available-days/{id}
func (h *AvailabilityHandler) UpdateDay(w http.ResponseWriter, r *http.Request) {
	var req request.AvailableDayRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	day, err := h.service.UpdateDay(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update day")
		return
	}

	utils.ResponseSuccess(w, day)
}

// DeleteDay handles DELETE /api/admin/available-days/{id}
func (h *AvailabilityHandler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDay(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete day")
		return
	}

	utils.ResponseSuccess(w, message("Day deleted"))
}

// ReplaceHours handles PUT /api/admin/available-hours
func (h *AvailabilityHandler) ReplaceHours(w http.ResponseWriter, r *http.Request) {
	var req request.AvailableHoursRequest
	if !decodeStrict(w, r, &req) {
		return
	}

	hours, err := h.service.ReplaceHours(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "replace hours")
		return
	}

	utils.ResponseSuccess(w, hours)
}
