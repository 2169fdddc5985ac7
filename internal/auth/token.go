package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed tokens or bad signatures.
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the claimed identity carried by a session token.
type Identity struct {
	UserID string
	Name   string
}

// sessionClaims is the JWT payload for a session token. The display name
// rides along so a verified token is enough to label presence events
// without a user lookup.
type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the opaque session tokens consumed by
// the connection gateway's authenticate event.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given user id and display name.
func (s *TokenService) Issue(userID, name string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "parlor",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the identity it
// carries. Failures are reported as typed errors: ErrTokenExpired for a
// lapsed expiry, ErrTokenInvalid for everything else.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{UserID: claims.Subject, Name: claims.Name}, nil
}
