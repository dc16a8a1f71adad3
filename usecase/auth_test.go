package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"noteshelf/repository"
	"noteshelf/services"
	"noteshelf/test/testutils"
	"noteshelf/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryLimiter struct {
	mu    sync.Mutex
	max   int
	count map[string]int
}

func (l *memoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count[key] >= l.max, nil
}

func (l *memoryLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count[key]++
	return nil
}

func (l *memoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.count, key)
	return nil
}

type memoryBlacklist struct {
	revoked map[string]time.Time
}

func (b *memoryBlacklist) Revoke(_ context.Context, token string, exp time.Time) error {
	b.revoked[token] = exp
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	_, ok := b.revoked[token]
	return ok, nil
}

type authFixture struct {
	svc    *AuthService
	users  *repository.UserRepo
	mailer *testutils.RecordingMailer
	clock  *testutils.FixedClock
	tokens *services.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := repository.NewUserRepo(testutils.NewTestDB(t))
	clock := testutils.NewFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tokens := services.NewTokenService("test-secret", time.Hour).WithClock(clock.Now)
	mailer := &testutils.RecordingMailer{}

	svc := NewAuthService(users, tokens, mailer, AuthSettings{
		OTPTTL:     10 * time.Minute,
		ResetTTL:   time.Hour,
		AppBaseURL: "http://app.local",
	}, zap.NewNop())
	svc.Now = clock.Now

	return &authFixture{svc: svc, users: users, mailer: mailer, clock: clock, tokens: tokens}
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "error: %v", err)
	assert.Equal(t, kind, appErr.Kind, "error: %v", err)
}

func TestRegister(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, "u1", "U1@Example.com ", "secret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "u1@example.com", user.Email)
	assert.NotEqual(t, "secret", user.Password)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		kind     utils.ErrorKind
	}{
		{"missing username", "", "a@example.com", "pw", utils.KindValidation},
		{"missing email", "a", "", "pw", utils.KindValidation},
		{"blank password", "a", "a@example.com", "  ", utils.KindValidation},
		{"duplicate email", "other", "u1@example.com", "pw", utils.KindConflict},
		{"duplicate username", "u1", "fresh@example.com", "pw", utils.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.username, tt.email, tt.password)
			assertKind(t, err, tt.kind)
		})
	}

	stored, err := f.users.FindUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Password, stored.Password, "original record unchanged")
	assert.Equal(t, "u1", stored.Username)
}

func TestLoginWithoutTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, "u1@example.com", "secret", "")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.False(t, res.Requires2FA)
	assert.Equal(t, user.ID, res.User.ID)

	sub, _, err := f.tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	_, err = f.svc.Login(ctx, "u1@example.com", "wrong", "")
	assertKind(t, err, utils.KindInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", "secret", "")
	assertKind(t, err, utils.KindNotFound)
}

func TestLoginWithTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)
	enabled, err := f.svc.Toggle2FA(ctx, user.ID, true)
	require.NoError(t, err)
	require.True(t, enabled)

	res, err := f.svc.Login(ctx, "u1@example.com", "secret", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	require.NoError(t, err)
	assert.True(t, res.Requires2FA)
	assert.Empty(t, res.Token)

	stored, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.OTPCode, 6)
	msg, ok := f.mailer.Last()
	require.True(t, ok)
	assert.Equal(t, "u1@example.com", msg.To)
	assert.Contains(t, msg.Text, stored.OTPCode)

	_, err = f.svc.VerifyOTP(ctx, "u1@example.com", "000000x")
	assertKind(t, err, utils.KindInvalidOrExpired)

	verified, err := f.svc.VerifyOTP(ctx, "u1@example.com", stored.OTPCode)
	require.NoError(t, err)
	sub, _, err := f.tokens.Parse(verified.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sub)

	// single use
	_, err = f.svc.VerifyOTP(ctx, "u1@example.com", stored.OTPCode)
	assertKind(t, err, utils.KindInvalidOrExpired)
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)
	_, err = f.svc.Toggle2FA(ctx, user.ID, true)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "u1@example.com", "secret", "")
	require.NoError(t, err)
	stored, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)

	f.clock.Advance(11 * time.Minute)
	_, err = f.svc.VerifyOTP(ctx, "u1@example.com", stored.OTPCode)
	assertKind(t, err, utils.KindInvalidOrExpired)
}

func TestLoginReplacesPendingOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)
	_, err = f.svc.Toggle2FA(ctx, user.ID, true)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "u1@example.com", "secret", "")
	require.NoError(t, err)
	first, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "u1@example.com", "secret", "")
	require.NoError(t, err)
	second, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)

	if first.OTPCode != second.OTPCode {
		_, err = f.svc.VerifyOTP(ctx, "u1@example.com", first.OTPCode)
		assertKind(t, err, utils.KindInvalidOrExpired)
	}
	_, err = f.svc.VerifyOTP(ctx, "u1@example.com", second.OTPCode)
	require.NoError(t, err)
}

func TestVerifyOTPAttemptLimit(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.Limiter = &memoryLimiter{max: 3, count: map[string]int{}}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.VerifyOTP(ctx, "u1@example.com", "123456")
		assertKind(t, err, utils.KindInvalidOrExpired)
	}
	_, err := f.svc.VerifyOTP(ctx, "u1@example.com", "123456")
	assertKind(t, err, utils.KindTooManyRequests)
}

func TestMailFailureKeepsCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)
	_, err = f.svc.Toggle2FA(ctx, user.ID, true)
	require.NoError(t, err)

	f.mailer.Err = errors.New("smtp down")
	_, err = f.svc.Login(ctx, "u1@example.com", "secret", "")
	assertKind(t, err, utils.KindServer)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to send email"))

	stored, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.OTPCode)
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)

	assertKind(t, f.svc.ForgotPassword(ctx, "nobody@example.com"), utils.KindNotFound)

	require.NoError(t, f.svc.ForgotPassword(ctx, "u1@example.com"))
	stored, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	token := stored.ResetPasswordToken
	require.NotEmpty(t, token)

	msg, ok := f.mailer.Last()
	require.True(t, ok)
	assert.Contains(t, msg.Text, "http://app.local/reset-password/"+token)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "new-secret"))
	assertKind(t, f.svc.ResetPassword(ctx, token, "again"), utils.KindInvalidOrExpired)

	_, err = f.svc.Login(ctx, "u1@example.com", "secret", "")
	assertKind(t, err, utils.KindInvalidCredentials)
	_, err = f.svc.Login(ctx, "u1@example.com", "new-secret", "")
	require.NoError(t, err)
}

func TestPasswordResetExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user, err := f.svc.Register(ctx, "u1", "u1@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "u1@example.com"))
	first, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "u1@example.com"))
	second, err := f.users.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.ResetPasswordToken, second.ResetPasswordToken)
	assertKind(t, f.svc.ResetPassword(ctx, first.ResetPasswordToken, "pw"), utils.KindInvalidOrExpired)

	f.clock.Advance(time.Hour + time.Second)
	assertKind(t, f.svc.ResetPassword(ctx, second.ResetPasswordToken, "pw"), utils.KindInvalidOrExpired)
	assertKind(t, f.svc.ResetPassword(ctx, second.ResetPasswordToken, " "), utils.KindValidation)
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// without a blacklist logout is a no-op
	require.NoError(t, f.svc.Logout(ctx, "tok", f.clock.Now().Add(time.Hour)))

	bl := &memoryBlacklist{revoked: map[string]time.Time{}}
	f.svc.Blacklist = bl
	require.NoError(t, f.svc.Logout(ctx, "tok", f.clock.Now().Add(time.Hour)))
	revoked, err := bl.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestToggle2FAUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Toggle2FA(context.Background(), 404, true)
	assertKind(t, err, utils.KindNotFound)
	assert.True(t, strings.HasPrefix(err.Error(), "User not found"))
}
