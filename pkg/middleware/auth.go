package middleware

import (
	"context"
	"net/http"
	"strings"

	"phone-repair/internal/data/entity"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionFinder looks up unexpired, unrevoked sessions by token.
type SessionFinder interface {
	FindValidSession(ctx context.Context, token string) (*entity.Session, error)
}

// UserFinder resolves the role of a session's user.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// resolveSession returns the signed-in user for token, or nil when the
// token is not a live session.
func resolveSession(ctx context.Context, sessions SessionFinder, users UserFinder, token string) (*entity.User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, nil
	}

	session, err := sessions.FindValidSession(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := users.FindByID(ctx, session.UserID)
	if err != nil || user == nil || !user.IsActive {
		return nil, err
	}
	return user, nil
}

func withUser(r *http.Request, user *entity.User, token string) *http.Request {
	ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
	ctx = utils.SetTokenContext(ctx, token)
	return r.WithContext(ctx)
}

// AuthSession requires a valid session bearer token.
func AuthSession(sessions SessionFinder, users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Missing or malformed authorization token. Use: Bearer <token>")
				return
			}

			user, err := resolveSession(r.Context(), sessions, users, token)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil {
				logger.Warn("Invalid or expired session", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, withUser(r, user, token))
		})
	}
}

// OptionalSession attaches the user when a valid session token is sent and
// otherwise lets the request through anonymously.
func OptionalSession(sessions SessionFinder, users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolveSession(r.Context(), sessions, users, token)
			if err != nil {
				logger.Warn("Optional session lookup failed", zap.Error(err))
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, withUser(r, user, token))
		})
	}
}

// AdminAccess admits a session whose user is an admin, or a signed admin JWT.
// Missing or invalid credentials get 401, a valid non-admin session gets 403.
func AdminAccess(sessions SessionFinder, users UserFinder, jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 1. Session token
			if _, err := uuid.Parse(token); err == nil {
				user, err := resolveSession(r.Context(), sessions, users, token)
				if err != nil {
					logger.Error("Admin check: failed to validate session", zap.Error(err))
					utils.ResponseInternalError(w, "Internal server error")
					return
				}
				if user == nil {
					utils.ResponseUnauthorized(w, "Invalid or expired session")
					return
				}
				if !user.IsAdmin() {
					logger.Warn("Admin check: non-admin access attempt",
						zap.String("user_id", user.ID.String()),
						zap.String("path", r.URL.Path))
					utils.ResponseForbidden(w, "Admin access required")
					return
				}

				next.ServeHTTP(w, withUser(r, user, token))
				return
			}

			// 2. Admin capability token
			claims, err := utils.ParseAdminToken(jwtSecret, token)
			if err != nil {
				logger.Warn("Admin check: rejected token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetAdminSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
