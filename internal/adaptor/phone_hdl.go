package adaptor

import (
	"net/http"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PhoneHandler struct {
	service usecase.PhoneService
	log     *zap.Logger
}

func NewPhoneHandler(service usecase.PhoneService, log *zap.Logger) *PhoneHandler {
	return &PhoneHandler{
		service: service,
		log:     log.With(zap.String("handler", "phone")),
	}
}

func phoneQuery(r *http.Request) request.PhoneListRequest {
	query := r.URL.Query()
	return request.PhoneListRequest{
		PaginatedRequest: pageQuery(r),
		Status:           query.Get("status"),
		Brand:            query.Get("brand"),
	}
}

// ListAvailable handles GET /api/phones?brand=
func (h *PhoneHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	req := phoneQuery(r)
	phones, err := h.service.ListAvailablePhones(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list phones")
		return
	}

	utils.ResponseSuccess(w, phones)
}

// GetPhone handles GET /api/phones/{id}
func (h *PhoneHandler) GetPhone(w http.ResponseWriter, r *http.Request) {
	phone, err := h.service.GetPhone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get phone")
		return
	}

	utils.ResponseSuccess(w, phone)
}

// ListAll handles GET /api/admin/phones?status=&brand=
func (h *PhoneHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	req := phoneQuery(r)
	phones, err := h.service.ListPhones(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list all phones")
		return
	}

	utils.ResponseSuccess(w, phones)
}

// Create handles POST /api/admin/phones
func (h *PhoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.PhoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phone, err := h.service.CreatePhone(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create phone")
		return
	}

	utils.ResponseCreated(w, phone)
}

// Update handles PUT /api/admin/phones/{id}
func (h *PhoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.PhoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phone, err := h.service.UpdatePhone(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update phone")
		return
	}

	utils.ResponseSuccess(w, phone)
}

// SetStatus handles PATCH /api/admin/phones/{id}/status
func (h *PhoneHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req request.PhoneStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phone, err := h.service.SetPhoneStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set phone status")
		return
	}

	utils.ResponseSuccess(w, phone)
}

// Delete handles DELETE /api/admin/phones/{id}
func (h *PhoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePhone(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete phone")
		return
	}

	utils.ResponseSuccess(w, message("Phone deleted"))
}
