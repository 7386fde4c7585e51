package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireCatalog mounts the repair price table and the phones-for-sale stock.
func wireCatalog(r chi.Router, pricingHandler *adaptor.PricingHandler, phoneHandler *adaptor.PhoneHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/prices", pricingHandler.GetPrices)
	r.Post("/api/quote", pricingHandler.Quote)

	r.Get("/api/phones", phoneHandler.ListAvailable)
	r.Get("/api/phones/{id}", phoneHandler.GetPhone)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/phones", func(r chi.Router) {
		r.Use(g.admin)

		r.Get("/", phoneHandler.ListAll)
		r.Post("/", phoneHandler.Create)
		r.Put("/{id}", phoneHandler.Update)
		r.Patch("/{id}/status", phoneHandler.SetStatus)
		r.Delete("/{id}", phoneHandler.Delete)
	})
}
