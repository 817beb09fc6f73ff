package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "amlaw-client-portal"

// Claims identify a portal session. The client identifier is itself the
// login secret, so only its fingerprint is carried.
type Claims struct {
	SessionID         string `json:"sid"`
	ClientFingerprint string `json:"cfp"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies session tokens
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// IssueSessionToken signs a token for the session and returns it with its
// lifetime in seconds.
func (m *JWTManager) IssueSessionToken(sessionID, clientFingerprint string) (string, int64, error) {
	if sessionID == "" {
		return "", 0, errors.New("session ID is required")
	}

	now := time.Now()
	claims := Claims{
		SessionID:         sessionID,
		ClientFingerprint: clientFingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientFingerprint,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, int64(m.ttl.Seconds()), nil
}

// ValidateSessionToken verifies signature, issuer and expiry and returns the
// claims.
func (m *JWTManager) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// TTL returns the token lifetime
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}
