package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireListing(r chi.Router, listingHandler *adaptor.ListingHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/listings", listingHandler.ListApproved)
	r.Get("/api/listings/{id}", listingHandler.GetListing)
	r.With(g.optional).Post("/api/listings", listingHandler.CreateListing)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(g.session)

		r.Get("/api/user/listings", listingHandler.ListMine)
		r.Delete("/api/user/listings/{id}", listingHandler.DeleteMine)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/listings", func(r chi.Router) {
		r.Use(g.admin)

		r.Get("/", listingHandler.ListAll)
		r.Patch("/{id}", listingHandler.Moderate)
		r.Delete("/{id}", listingHandler.Delete)
	})
}
