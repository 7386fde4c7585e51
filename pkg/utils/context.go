package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	RoleKey    contextKey = "role"
	TokenKey   contextKey = "token"
	SubjectKey contextKey = "subject"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userIDVal := ctx.Value(UserIDKey)
	if userIDVal == nil {
		return uuid.Nil, false
	}

	userIDStr, ok := userIDVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

// OptionalUserID returns the signed-in user's ID or nil for anonymous requests.
func OptionalUserID(ctx context.Context) *uuid.UUID {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	roleVal := ctx.Value(RoleKey)
	if roleVal == nil {
		return "", false
	}

	role, ok := roleVal.(string)
	return role, ok
}

func SetUserContext(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID.String())
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

// GetTokenFromContext returns the bearer token stored by the auth middleware
func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// SetAdminSubject marks the request as admin-authorized by a capability token.
// A subject that is a user ID is also exposed as the user.
func SetAdminSubject(ctx context.Context, subject string) context.Context {
	ctx = context.WithValue(ctx, RoleKey, RoleAdmin)
	ctx = context.WithValue(ctx, SubjectKey, subject)
	if _, err := uuid.Parse(subject); err == nil {
		ctx = context.WithValue(ctx, UserIDKey, subject)
	}
	return ctx
}

// GetSubjectFromContext returns who the request acts as: the admin token
// subject, or the signed-in user's ID.
func GetSubjectFromContext(ctx context.Context) string {
	if subject, ok := ctx.Value(SubjectKey).(string); ok && subject != "" {
		return subject
	}
	if userID, ok := GetUserIDFromContext(ctx); ok {
		return userID.String()
	}
	return ""
}
