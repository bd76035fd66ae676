package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	ErrInvalidCSRF  = errors.New("invalid or missing CSRF token")
)

const (
	sessionAudience = "session"
	csrfAudience    = "csrf"
)

// JWTManager handles session and CSRF token generation and validation.
// Both are HS256 JWTs signed with the same key and told apart by audience.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	csrfDuration  time.Duration
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager with the given secret and token durations.
// tokenDuration bounds sessions (e.g., 24 hours), csrfDuration bounds CSRF tokens.
func NewJWTManager(secretKey string, tokenDuration, csrfDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		csrfDuration:  csrfDuration,
	}
}

// Generate creates a new session token for the given user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	return m.sign(&Claims{
		UserID:           user.ID,
		Username:         user.Username,
		RegisteredClaims: m.registered(user.ID, sessionAudience, m.tokenDuration),
	})
}

// Validate parses and validates a session token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	return m.parse(tokenString, sessionAudience)
}

// GenerateCSRF issues a short-lived anti-forgery token bound to userID.
func (m *JWTManager) GenerateCSRF(userID string) (string, error) {
	rc := m.registered(userID, csrfAudience, m.csrfDuration)
	rc.ID = uuid.New().String()
	return m.sign(&Claims{UserID: userID, RegisteredClaims: rc})
}

// ValidateCSRF checks that tokenString is a live CSRF token issued to userID.
func (m *JWTManager) ValidateCSRF(tokenString, userID string) error {
	if tokenString == "" {
		return ErrInvalidCSRF
	}
	claims, err := m.parse(tokenString, csrfAudience)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCSRF, err)
	}
	if claims.UserID != userID {
		return ErrInvalidCSRF
	}
	return nil
}

func (m *JWTManager) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func (m *JWTManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (m *JWTManager) parse(tokenString, audience string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithAudience(audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
