package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	// Guests may book; a valid session links the booking to the account.
	r.With(g.optional).Post("/api/create-booking", bookingHandler.CreateBooking)

	// ==================== PROTECTED ROUTES ====================
	r.With(g.session).Get("/api/user/bookings", bookingHandler.GetUserBookings)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(g.admin)

		r.Get("/", bookingHandler.ListBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Patch("/{id}", bookingHandler.UpdateBookingStatus)
	})
}
