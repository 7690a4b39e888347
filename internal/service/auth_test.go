package service

import (
	"context"
	"encoding/hex"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryapp/pantry-server/internal/auth"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/ratelimit"
)

// setupAuthTest wires an auth service with a generous limiter so only
// the rate-limit test exhausts it.
func setupAuthTest(t *testing.T, rps float64, burst int) (*AuthService, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pantry-auth-test-*")
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute)
	require.NoError(t, err)

	credentials, err := auth.NewCredentialStore("admin", "hunter22")
	require.NoError(t, err)

	limiter := ratelimit.New(rps, burst)
	svc := NewAuthService(credentials, tokens, limiter, testLogger())

	cleanup := func() {
		limiter.Stop()
		_ = os.RemoveAll(tmpDir)
	}
	return svc, cleanup
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()

	result, err := svc.Login(context.Background(), "admin", "hunter22", "203.0.113.7")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := svc.VerifyToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()

	_, err := svc.Login(context.Background(), "admin", "wrong", "203.0.113.7")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestAuthService_Login_WrongUsernameSameError(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()

	_, userErr := svc.Login(context.Background(), "root", "hunter22", "203.0.113.7")
	_, passErr := svc.Login(context.Background(), "admin", "wrong", "203.0.113.7")

	require.Error(t, userErr)
	require.Error(t, passErr)
	assert.Equal(t, userErr.Error(), passErr.Error())
}

func TestAuthService_Login_RateLimited(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 0.01, 2)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, "admin", "wrong", "198.51.100.9")
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
	}

	_, err := svc.Login(ctx, "admin", "hunter22", "198.51.100.9")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRateLimited))

	// A different client IP has its own budget.
	_, err = svc.Login(ctx, "admin", "hunter22", "198.51.100.10")
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, svc.ChangePassword(ctx, "hunter22", "correcthorse"))

	_, err := svc.Login(ctx, "admin", "hunter22", "203.0.113.7")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "admin", "correcthorse", "203.0.113.7")
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()

	err := svc.ChangePassword(context.Background(), "nope", "correcthorse")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestAuthService_ChangePassword_TooShort(t *testing.T) {
	svc, cleanup := setupAuthTest(t, 100, 100)
	defer cleanup()

	err := svc.ChangePassword(context.Background(), "hunter22", "abc")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}
