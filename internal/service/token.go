package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"folio/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "folio-api"
	tokenAudience = "folio-client"

	// DefaultTokenTTL is used when no expiry is configured.
	DefaultTokenTTL = 7 * 24 * time.Hour
)

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a TokenManager signing with secret. A non-positive
// ttl falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for user carrying its id, email and role.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iss":   tokenIssuer,
		"aud":   tokenAudience,
		"exp":   now.Add(m.ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies tokenString and returns the identity it carries.
func (m *TokenManager) Parse(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.NewUnauthorizedError("Token has expired")
		}
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return nil, models.NewUnauthorizedError("Invalid role in token")
	}
	email, _ := claims["email"].(string)

	return &models.Identity{
		UserID: uint(userID),
		Email:  email,
		Role:   models.Role(role),
	}, nil
}
