package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAvailability(r chi.Router, availabilityHandler *adaptor.AvailabilityHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/availability", availabilityHandler.GetAvailability)
	r.Get("/api/available-days", availabilityHandler.ListUpcomingDays)
	r.Get("/api/available-hours", availabilityHandler.GetHours)

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.admin)

		r.Get("/api/admin/available-days", availabilityHandler.ListAllDays)
		r.Post("/api/admin/available-days", availabilityHandler.UpsertDay)
		r.Put("/api/admin/available-days/{id}", availabilityHandler.UpdateDay)
		r.Delete("/api/admin/available-days/{id}", availabilityHandler.DeleteDay)
		r.Put("/api/admin/available-hours", availabilityHandler.ReplaceHours)
	})
}
