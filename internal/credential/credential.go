// Package credential hashes passwords and issues password-reset tokens for
// every kind of account (admins, mentors, students).
package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"MentorDesk/internal/apperror"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 1000
	keyLength  = 64
	saltBytes  = 16
	tokenBytes = 20

	// SelfServiceTTL bounds tokens requested through "forgot password".
	SelfServiceTTL = 10 * time.Minute
	// ProvisioningTTL bounds tokens mailed to accounts created by an import.
	ProvisioningTTL = 24 * time.Hour
)

var ErrTokenInvalidOrExpired = apperror.Validation("Invalid or expired token")

// ResetToken pairs the plain token, which only ever travels by mail, with the
// hash that gets stored.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// Hash derives the stored digest of password. It is deterministic for a given
// salt.
func Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha512.New)
	return hex.EncodeToString(key)
}

func NewSalt() (string, error) {
	return randomHex(saltBytes)
}

// Verify reports whether candidate hashes to digest under salt.
func Verify(candidate, digest, salt string) bool {
	if digest == "" || salt == "" {
		return false
	}
	computed := Hash(candidate, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

func IssueResetToken(ttl time.Duration) (ResetToken, error) {
	plain, err := randomHex(tokenBytes)
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Plain:     plain,
		Hash:      HashToken(plain),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashToken is the lookup key under which a plain reset token is stored.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Secret is a freshly salted password hash ready to be persisted.
type Secret struct {
	Hash string
	Salt string
}

func NewSecret(password string) (Secret, error) {
	salt, err := NewSalt()
	if err != nil {
		return Secret{}, err
	}
	return Secret{Hash: Hash(password, salt), Salt: salt}, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TokenStore consumes a stored reset token. The swap must be conditional on
// the token hash still being present and unexpired, so a token works once.
type TokenStore interface {
	ConsumeResetToken(ctx context.Context, tokenHash string, secret Secret, now time.Time) (bool, error)
}

// ResetPassword replaces the password of whichever account holds plain.
func ResetPassword(ctx context.Context, store TokenStore, plain, password string) error {
	if plain == "" {
		return ErrTokenInvalidOrExpired
	}
	secret, err := NewSecret(password)
	if err != nil {
		return apperror.Internal(err)
	}
	ok, err := store.ConsumeResetToken(ctx, HashToken(plain), secret, time.Now())
	if err != nil {
		return apperror.Dependency("Failed to reset password", err)
	}
	if !ok {
		return ErrTokenInvalidOrExpired
	}
	return nil
}
