package auth

import (
	"sync"

	apperrors "github.com/pantryapp/pantry-server/internal/errors"
)

// minPasswordLength is the minimum accepted length for a new password.
const minPasswordLength = 4

// CredentialStore holds the single admin credential. The initial
// username and password come from configuration at startup; password
// changes replace the stored hash in memory and do not survive a
// restart, matching the single-admin deployment model.
type CredentialStore struct {
	mu           sync.RWMutex
	username     string
	passwordHash string
}

// NewCredentialStore creates a store seeded with the given username and
// plaintext password. The password is hashed immediately and never
// retained.
func NewCredentialStore(username, password string) (*CredentialStore, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		username:     username,
		passwordHash: hash,
	}, nil
}

// Username returns the admin username.
func (c *CredentialStore) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// Verify checks a login attempt. Wrong username and wrong password are
// indistinguishable to the caller.
func (c *CredentialStore) Verify(username, password string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if username != c.username {
		return false
	}
	ok, err := VerifyPassword(c.passwordHash, password)
	return err == nil && ok
}

// ChangePassword replaces the stored password after verifying the old
// one. New passwords must be at least minPasswordLength characters.
func (c *CredentialStore) ChangePassword(oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.Validationf("new password must be at least %d characters", minPasswordLength)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ok, err := VerifyPassword(c.passwordHash, oldPassword)
	if err != nil || !ok {
		return apperrors.InvalidCredentials("old password is incorrect")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("failed to hash password").WithCause(err)
	}

	c.passwordHash = hash
	return nil
}
