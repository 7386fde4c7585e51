package adaptor

import (
	"net/http"

	"phone-repair/internal/dto/request"
	"phone-repair/internal/usecase"
	"phone-repair/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListingHandler struct {
	service usecase.ListingService
	log     *zap.Logger
}

func NewListingHandler(service usecase.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log.With(zap.String("handler", "listing")),
	}
}

func listingQuery(r *http.Request) request.ListingListRequest {
	query := r.URL.Query()
	return request.ListingListRequest{
		PaginatedRequest: pageQuery(r),
		Status:           query.Get("status"),
		Brand:            query.Get("brand"),
	}
}

// ==================== PUBLIC ====================

// ListApproved handles GET /api/listings?brand=
func (h *ListingHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	req := listingQuery(r)
	listings, err := h.service.ListApprovedListings(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list listings")
		return
	}

	utils.ResponseSuccess(w, listings)
}

// GetListing handles GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get listing")
		return
	}

	utils.ResponseSuccess(w, listing)
}

// CreateListing handles POST /api/listings (session optional)
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req request.CreateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	listing, err := h.service.CreateListing(r.Context(), utils.OptionalUserID(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create listing")
		return
	}

	utils.ResponseCreated(w, listing)
}

// ==================== SIGNED IN ====================

// ListMine handles GET /api/user/listings
func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	page := pageQuery(r)
	listings, err := h.service.ListMyListings(r.Context(), userID, &page)
	if err != nil {
		handleServiceError(w, h.log, err, "list my listings")
		return
	}

	utils.ResponseSuccess(w, listings)
}

// DeleteMine handles DELETE /api/user/listings/{id}
func (h *ListingHandler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.DeleteMyListing(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete my listing")
		return
	}

	utils.ResponseSuccess(w, message("Listing deleted"))
}

// ==================== ADMIN ====================

// ListAll handles GET /api/admin/listings?status=&brand=
func (h *ListingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	req := listingQuery(r)
	listings, err := h.service.ListListings(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list all listings")
		return
	}

	utils.ResponseSuccess(w, listings)
}

// Moderate handles PATCH /api/admin/listings/{id}
func (h *ListingHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	var req request.ModerateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	listing, err := h.service.ModerateListing(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "moderate listing")
		return
	}

	utils.ResponseSuccess(w, listing)
}

// Delete handles DELETE /api/admin/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "delete listing")
		return
	}

	utils.ResponseSuccess(w, message("Listing deleted"))
}
