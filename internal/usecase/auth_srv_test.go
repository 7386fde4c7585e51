package usecase

import (
	"context"
	"regexp"
	"testing"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/dto/request"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otpPattern = regexp.MustCompile(`\b\d{6}\b`)

func registerRequest() *request.RegisterRequest {
	return &request.RegisterRequest{
		Username: "maria",
		Email:    "Maria@Example.com",
		Password: "secret123",
	}
}

func TestRegisterVerifyAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	ctx := context.Background()

	registered, err := svc.Auth.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", registered.Email)
	assert.Equal(t, entity.RoleCustomer, registered.Role)
	assert.False(t, registered.IsVerified)
	assert.NotEmpty(t, registered.Token)

	msg := f.mail.next(t)
	assert.Equal(t, "maria@example.com", msg.To)
	code := otpPattern.FindString(msg.Body)
	require.NotEmpty(t, code)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = svc.Auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "maria@example.com", OTP: wrong})
	assert.ErrorIs(t, err, ErrValidation)
	require.NoError(t, svc.Auth.VerifyEmail(ctx, &request.VerifyEmailRequest{Email: "maria@example.com", OTP: code}))

	profile, err := svc.User.GetProfile(ctx, registered.UserID)
	require.NoError(t, err)
	assert.True(t, profile.IsVerified)

	err = svc.Auth.SendOTP(ctx, &request.SendOTPRequest{Email: "maria@example.com", Type: "email_verification"})
	assert.ErrorIs(t, err, ErrValidation)

	byEmail, err := svc.Auth.Login(ctx, &request.LoginRequest{Username: "maria@example.com", Password: "secret123"})
	require.NoError(t, err)
	byName, err := svc.Auth.Login(ctx, &request.LoginRequest{Username: "maria", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, byEmail.Token, byName.Token)

	require.NoError(t, svc.Auth.Logout(ctx, byName.Token))
	assert.ErrorIs(t, svc.Auth.Logout(ctx, byName.Token), ErrUnauthorized)
}

func TestRegisterRejectsTakenAccount(t *testing.T) {
	svc := newFixture(t).service()
	ctx := context.Background()

	_, err := svc.Auth.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Auth.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, ErrConflict)

	other := registerRequest()
	other.Email = "other@example.com"
	_, err = svc.Auth.Register(ctx, other)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Auth.Register(ctx, &request.RegisterRequest{Username: "x", Email: "bad", Password: "1"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	f.repo.User = newFakeUsers(&entity.User{
		Base:         entity.Base{ID: uuid.New()},
		Username:     "gone",
		Email:        "gone@example.com",
		PasswordHash: hash,
		IsActive:     false,
	})
	svc := f.service()
	ctx := context.Background()

	_, err = svc.Auth.Login(ctx, &request.LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Auth.Login(ctx, &request.LoginRequest{Username: "gone", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Auth.Login(ctx, &request.LoginRequest{Username: "gone", Password: "secret123"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestIssueAdminToken(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	resp, err := svc.Auth.IssueAdminToken(context.Background(), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), resp.ExpiresAt)

	claims, err := utils.ParseAdminToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)

	f.config.JWT.Secret = ""
	_, err = svc.Auth.IssueAdminToken(context.Background(), "admin-1")
	assert.Error(t, err)
}

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	users := []*entity.User{
		{Base: entity.Base{ID: uuid.New()}, Username: "a", Email: "a@example.com", IsActive: true},
		{Base: entity.Base{ID: uuid.New()}, Username: "b", Email: "b@example.com", IsActive: true},
	}
	f.repo.User = newFakeUsers(users...)
	svc := f.service()
	ctx := context.Background()

	list, err := svc.User.ListUsers(ctx, &request.PaginatedRequest{Page: 0, PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, 100, list.Pagination.PerPage)

	require.NoError(t, svc.User.DeleteUser(ctx, users[0].ID.String()))
	assert.ErrorIs(t, svc.User.DeleteUser(ctx, users[0].ID.String()), ErrNotFound)

	_, err = svc.User.GetProfile(ctx, users[0].ID.String())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.User.GetProfile(ctx, "abc")
	assert.ErrorIs(t, err, ErrValidation)
}
