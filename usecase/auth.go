package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"noteshelf/dto"
	"noteshelf/model"
	"noteshelf/repository"
	"noteshelf/services"
	"noteshelf/utils"

	"go.uber.org/zap"
)

type AuthSettings struct {
	OTPTTL     time.Duration
	ResetTTL   time.Duration
	AppBaseURL string
}

// AuthService owns registration, login with optional emailed OTP, password
// reset and session revocation.
type AuthService struct {
	Users    repository.UserRepository
	Tokens   *services.TokenService
	Mailer   services.Mailer
	Settings AuthSettings
	Logger   *zap.Logger

	// Optional; nil disables revocation and OTP attempt limiting.
	Blacklist services.TokenBlacklist
	Limiter   services.AttemptLimiter

	Now func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens *services.TokenService, mailer services.Mailer, settings AuthSettings, logger *zap.Logger) *AuthService {
	return &AuthService{
		Users:    users,
		Tokens:   tokens,
		Mailer:   mailer,
		Settings: settings,
		Logger:   logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, utils.ValidationError("Username, email and password are required")
	}

	if _, err := s.Users.FindUserByEmail(ctx, email); err == nil {
		return nil, utils.ConflictError("User already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.ServerError("Failed to register user", err)
	}

	hashed, err := services.HashPassword(password)
	if err != nil {
		return nil, utils.ServerError("Failed to register user", err)
	}

	now := s.Now()
	user := &model.User{
		Username:  username,
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.ConflictError("User already exists")
		}
		return nil, utils.ServerError("Failed to register user", err)
	}

	s.Logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the password. With two-factor enabled it mails a fresh code
// and returns a result without a token.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (*dto.LoginResult, error) {
	user, err := s.Users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.TrackAuthAttempt("failure", "login")
			return nil, utils.NotFoundError("User not found")
		}
		return nil, utils.ServerError("Login failed", err)
	}

	ok, err := services.VerifyPassword(user.Password, password)
	if err != nil {
		return nil, utils.ServerError("Login failed", err)
	}
	if !ok {
		utils.TrackAuthAttempt("failure", "login")
		return nil, utils.InvalidCredentialsError("Invalid credentials")
	}

	if user.TwoFactorEnabled {
		if err := s.issueOTP(ctx, user, userAgent); err != nil {
			return nil, err
		}
		utils.TrackAuthAttempt("pending", "login")
		return &dto.LoginResult{Requires2FA: true, Email: user.Email}, nil
	}

	utils.TrackAuthAttempt("success", "login")
	return s.session(user)
}

func (s *AuthService) issueOTP(ctx context.Context, user *model.User, userAgent string) error {
	code, err := services.GenerateOTP()
	if err != nil {
		return utils.ServerError("Login failed", err)
	}
	expires := s.Now().Add(s.Settings.OTPTTL)
	user.OTPCode = code
	user.OTPExpires = &expires
	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return utils.ServerError("Login failed", err)
	}

	msg, err := services.OTPMessage(user.Email, code, utils.DescribeDevice(userAgent), s.Settings.OTPTTL)
	if err != nil {
		return utils.ServerError("Failed to send email", err)
	}
	return s.send(ctx, "otp", msg)
}

// VerifyOTP exchanges a valid pending code for a session token. The code is
// single use.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*dto.LoginResult, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	if s.Limiter != nil {
		blocked, err := s.Limiter.Blocked(ctx, email)
		if err != nil {
			s.Logger.Warn("otp attempt lookup failed", zap.Error(err))
		} else if blocked {
			utils.TrackAuthAttempt("blocked", "otp")
			return nil, utils.TooManyRequestsError("Too many attempts, please try again later")
		}
	}

	user, err := s.Users.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, utils.ServerError("Verification failed", err)
	}
	if user == nil || user.OTPCode == "" || user.OTPExpires == nil ||
		!services.CodesEqual(user.OTPCode, code) || !user.OTPExpires.After(s.Now()) {
		s.recordOTPFailure(ctx, email)
		utils.TrackAuthAttempt("failure", "otp")
		return nil, utils.InvalidOrExpiredError("Invalid or expired OTP")
	}

	user.ClearOTP()
	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return nil, utils.ServerError("Verification failed", err)
	}
	if s.Limiter != nil {
		if err := s.Limiter.Reset(ctx, email); err != nil {
			s.Logger.Warn("otp attempt reset failed", zap.Error(err))
		}
	}

	utils.TrackAuthAttempt("success", "otp")
	return s.session(user)
}

func (s *AuthService) recordOTPFailure(ctx context.Context, email string) {
	if s.Limiter == nil {
		return
	}
	if err := s.Limiter.Fail(ctx, email); err != nil {
		s.Logger.Warn("otp attempt record failed", zap.Error(err))
	}
}

func (s *AuthService) session(user *model.User) (*dto.LoginResult, error) {
	token, err := s.Tokens.Generate(user.ID)
	if err != nil {
		return nil, utils.ServerError("Server config error", err)
	}
	summary := dto.ToUserSummary(user)
	return &dto.LoginResult{Token: token, User: &summary}, nil
}

func (s *AuthService) Toggle2FA(ctx context.Context, userID uint, enabled bool) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return false, err
	}
	user.TwoFactorEnabled = enabled
	if !enabled {
		user.ClearOTP()
	}
	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return false, utils.ServerError("Failed to update 2FA setting", err)
	}
	return user.TwoFactorEnabled, nil
}

// ForgotPassword stores a new reset token, replacing any earlier one, and
// mails the reset link. If the mail fails the token stays stored.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFoundError("User not found")
		}
		return utils.ServerError("Failed to process request", err)
	}

	token, err := services.GenerateResetToken()
	if err != nil {
		return utils.ServerError("Failed to process request", err)
	}
	expires := s.Now().Add(s.Settings.ResetTTL)
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expires
	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return utils.ServerError("Failed to process request", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", s.Settings.AppBaseURL, token)
	msg, err := services.ResetMessage(user.Email, link, s.Settings.ResetTTL)
	if err != nil {
		return utils.ServerError("Failed to send email", err)
	}
	return s.send(ctx, "reset", msg)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if strings.TrimSpace(password) == "" {
		return utils.ValidationError("Password is required")
	}
	if token == "" {
		return utils.InvalidOrExpiredError("Invalid or expired token")
	}

	user, err := s.Users.FindUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.InvalidOrExpiredError("Invalid or expired token")
		}
		return utils.ServerError("Failed to reset password", err)
	}
	if user.ResetPasswordExpires == nil || !user.ResetPasswordExpires.After(s.Now()) {
		return utils.InvalidOrExpiredError("Invalid or expired token")
	}

	hashed, err := services.HashPassword(password)
	if err != nil {
		return utils.ServerError("Failed to reset password", err)
	}
	user.Password = hashed
	user.ClearResetToken()
	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return utils.ServerError("Failed to reset password", err)
	}

	utils.TrackAuthAttempt("success", "password_reset")
	return nil
}

// Logout revokes token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.Blacklist == nil {
		return nil
	}
	if err := s.Blacklist.Revoke(ctx, token, expiresAt); err != nil {
		return utils.ServerError("Failed to log out", err)
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	return s.findUser(ctx, userID)
}

func (s *AuthService) findUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, utils.ServerError("Failed to load user", err)
	}
	return user, nil
}

func (s *AuthService) send(ctx context.Context, kind string, msg services.Message) error {
	err := s.Mailer.Send(ctx, msg)
	utils.TrackMail(kind, err)
	if err != nil {
		return utils.ServerError("Failed to send email", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
