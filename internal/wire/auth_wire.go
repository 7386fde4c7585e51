package wire

import (
	"phone-repair/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/register", authHandler.Register)
	r.Post("/api/login", authHandler.Login)
	r.Post("/api/send-otp", authHandler.SendOTP)
	r.Post("/api/verify-email", authHandler.VerifyEmail)

	// ==================== PROTECTED ROUTES ====================
	r.With(g.session).Post("/api/logout", authHandler.Logout)

	// Admin JWT for tooling, minted from an admin session or an existing token
	r.With(g.admin).Post("/api/admin/token", authHandler.AdminToken)
}
