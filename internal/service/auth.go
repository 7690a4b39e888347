package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pantryapp/pantry-server/internal/auth"
	apperrors "github.com/pantryapp/pantry-server/internal/errors"
	"github.com/pantryapp/pantry-server/internal/ratelimit"
)

// AuthService handles login and password changes for the single admin
// account. Login attempts are rate limited per client IP.
type AuthService struct {
	credentials *auth.CredentialStore
	tokens      *auth.TokenService
	limiter     *ratelimit.KeyedRateLimiter
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(credentials *auth.CredentialStore, tokens *auth.TokenService, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokens:      tokens,
		limiter:     limiter,
		logger:      logger,
	}
}

// LoginResult carries an issued access token and its lifetime.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login verifies credentials and issues an access token. Failed and
// succeeded attempts consume the same rate limit budget, so an attacker
// learns nothing from the limiter.
func (s *AuthService) Login(_ context.Context, username, password, clientIP string) (*LoginResult, error) {
	if !s.limiter.Allow(clientIP) {
		s.logger.Warn("login rate limited", "ip", clientIP)
		return nil, apperrors.RateLimited("too many login attempts, try again later")
	}

	if !s.credentials.Verify(username, password) {
		s.logger.Warn("login failed", "username", username, "ip", clientIP)
		return nil, apperrors.InvalidCredentials("invalid username or password")
	}

	token, err := s.tokens.GenerateAccessToken(username)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token").WithCause(err)
	}

	s.logger.Info("login succeeded", "username", username)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(s.tokens.AccessTokenDuration()),
	}, nil
}

// ChangePassword updates the admin password after verifying the old
// one. Already-issued tokens stay valid until they expire.
func (s *AuthService) ChangePassword(_ context.Context, oldPassword, newPassword string) error {
	if err := s.credentials.ChangePassword(oldPassword, newPassword); err != nil {
		return err
	}
	s.logger.Info("password changed", "username", s.credentials.Username())
	return nil
}

// VerifyToken validates an access token and returns its claims. Used by
// the HTTP auth middleware.
func (s *AuthService) VerifyToken(token string) (*auth.AccessClaims, error) {
	return s.tokens.VerifyAccessToken(token)
}
