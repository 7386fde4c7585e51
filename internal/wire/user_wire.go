package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	r.With(g.session).Get("/api/user/profile", userHandler.GetProfile)

	r.Route("/api/admin/users", func(r chi.Router) {
		r.Use(g.admin)

		r.Get("/", userHandler.ListUsers)
		r.Delete("/{id}", userHandler.DeleteUser)
	})
}
