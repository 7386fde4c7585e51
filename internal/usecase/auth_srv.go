package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"phone-repair/internal/data/entity"
	"phone-repair/internal/data/repository"
	"phone-repair/internal/dto/request"
	"phone-repair/internal/dto/response"
	"phone-repair/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	SendOTP(ctx context.Context, req *request.SendOTPRequest) error
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
	IssueAdminToken(ctx context.Context, subject string) (*response.AdminTokenResponse, error)
}

type authService struct {
	repo   *repository.Repository // user, session & otp
	notify *notifier
	config *utils.Config
	now    func() time.Time
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	notify *notifier,
	deps Deps,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		notify: notify,
		config: config,
		now:    deps.clock(),
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validate input
	if err := validate(req); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Email and username must be free
	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	}

	existing, err = s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("username already taken: %w", ErrConflict)
	}

	// 3. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 4. Save user
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hashedPassword,
		Phone:         req.Phone,
		Role:          entity.RoleCustomer,
		EmailVerified: false,
		IsActive:      true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("account already exists: %w", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 5. Verification code, mailed in the background
	if err := s.issueOTP(ctx, user, entity.OTPTypeEmailVerification); err != nil {
		s.log.Warn("Failed to issue verification OTP", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	// 6. Sign in right away
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// Username field takes either an email or a username
	user, err := s.repo.User.FindByEmail(ctx, strings.ToLower(req.Username))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		user, err = s.repo.User.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid credentials", zap.String("identifier", req.Username))
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("account is deactivated: %w", ErrForbidden)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return fmt.Errorf("invalid token format: %w", ErrUnauthorized)
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("session not found: %w", ErrUnauthorized)
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	s.log.Info("User logged out")
	return nil
}

func (s *authService) SendOTP(ctx context.Context, req *request.SendOTPRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.repo.User.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", req.Email, ErrNotFound)
	}

	otpType := entity.OTPType(req.Type)
	if otpType == entity.OTPTypeEmailVerification && user.EmailVerified {
		return invalidf("email already verified")
	}

	return s.issueOTP(ctx, user, otpType)
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	if err := validate(req); err != nil {
		return err
	}
	email := strings.ToLower(req.Email)

	otp, err := s.repo.OTP.FindValidOTP(ctx, email, req.OTP, entity.OTPTypeEmailVerification)
	if err != nil {
		return fmt.Errorf("find otp: %w", err)
	}
	if otp == nil {
		return invalidf("invalid or expired OTP")
	}

	if err := s.repo.OTP.MarkAsUsed(ctx, otp.ID); err != nil {
		s.log.Warn("Failed to mark OTP as used", zap.Error(err), zap.String("otp_id", otp.ID.String()))
	}

	if err := s.repo.User.MarkEmailVerified(ctx, otp.UserID); err != nil {
		return mapRepoError(err, "verify email")
	}

	s.log.Info("Email verified", zap.String("user_id", otp.UserID.String()))
	return nil
}

func (s *authService) IssueAdminToken(ctx context.Context, subject string) (*response.AdminTokenResponse, error) {
	ttl := time.Duration(s.config.JWT.ExpiryHours) * time.Hour
	token, expiresAt, err := utils.CreateAdminToken(s.config.JWT.Secret, subject, ttl, s.now())
	if err != nil {
		return nil, fmt.Errorf("issue admin token: %w", err)
	}

	s.log.Info("Admin token issued", zap.String("subject", subject), zap.Time("expires_at", expiresAt))
	return &response.AdminTokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createSession(ctx context.Context, userID uuid.UUID) (*entity.Session, error) {
	hours := s.config.Auth.SessionExpiryHours
	if hours <= 0 {
		hours = 24
	}

	now := s.now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     uuid.New(),
		ExpiresAt: now.Add(time.Duration(hours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// issueOTP replaces any outstanding code of the same type and mails the new one.
func (s *authService) issueOTP(ctx context.Context, user *entity.User, otpType entity.OTPType) error {
	if err := s.repo.OTP.InvalidateAll(ctx, user.Email, otpType); err != nil {
		return fmt.Errorf("invalidate otps: %w", err)
	}

	now := s.now()
	otp := &entity.OTP{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		OTPCode:   utils.GenerateOTP(s.config.OTP.Length),
		OTPType:   otpType,
		ExpiresAt: now.Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute),
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	s.notify.OTP(user.Email, otp.OTPCode, otp.ExpiresAt)

	s.log.Info("OTP issued",
		zap.String("user_id", user.ID.String()),
		zap.String("otp_type", string(otpType)),
		zap.Time("expires_at", otp.ExpiresAt),
	)
	return nil
}
