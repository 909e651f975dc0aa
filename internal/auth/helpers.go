package auth

import (
	"errors"
	"fmt"
	"time"

	"MentorDesk/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// JWTClaims identify an admin by Subject (the admin id); ID is the token id
// used for revocation.
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(cfg *config.AppConfig) *TokenIssuer {
	return &TokenIssuer{secret: []byte(cfg.JWTSecret), ttl: cfg.JWTTTL}
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

func (t *TokenIssuer) Issue(admin *Admin) (string, *JWTClaims, error) {
	now := time.Now()
	claims := &JWTClaims{
		Role: admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.Hex(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry.
func (t *TokenIssuer) Parse(raw string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
