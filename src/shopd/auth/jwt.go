// Package auth issues and validates the admin tokens that guard the storage
// and settings routes.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// secretSettingKey is where the signing secret is persisted
const secretSettingKey = "jwt_secret"

// SettingsStore persists the signing secret
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// JWTConfig holds JWT service configuration
type JWTConfig struct {
	Issuer        string
	TokenDuration time.Duration
}

// DefaultJWTConfig returns default JWT configuration
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		Issuer:        "shopd",
		TokenDuration: 24 * time.Hour,
	}
}

// Claims is what a validated token asserts about its bearer
type Claims struct {
	Subject   string
	Admin     bool
	TokenID   string
	ExpiresAt time.Time
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin"`
}

// JWTService handles token generation and validation
type JWTService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
}

// NewJWTService creates the service, loading the signing secret from
// settings or generating and persisting a new one
func NewJWTService(ctx context.Context, cfg JWTConfig, settings SettingsStore) (*JWTService, error) {
	secret, err := settings.GetSetting(ctx, secretSettingKey)
	if err != nil && !errors.Is(err, apperrors.ErrSettingNotFound) {
		return nil, fmt.Errorf("failed to load signing secret: %w", err)
	}
	if secret == "" {
		secret, err = generateSecretKey()
		if err != nil {
			return nil, err
		}
		if err := settings.SetSetting(ctx, secretSettingKey, secret); err != nil {
			return nil, fmt.Errorf("failed to persist signing secret: %w", err)
		}
	}

	return NewJWTServiceWithSecret(cfg, []byte(secret)), nil
}

// NewJWTServiceWithSecret creates the service with a fixed secret
func NewJWTServiceWithSecret(cfg JWTConfig, secret []byte) *JWTService {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultJWTConfig().Issuer
	}
	if cfg.TokenDuration <= 0 {
		cfg.TokenDuration = DefaultJWTConfig().TokenDuration
	}
	return &JWTService{
		secretKey:     secret,
		issuer:        cfg.Issuer,
		tokenDuration: cfg.TokenDuration,
	}
}

// generateSecretKey returns a random 256-bit hex secret
func generateSecretKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate signing secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateToken signs a token for subject
func (s *JWTService) GenerateToken(subject string, admin bool) (string, error) {
	now := time.Now().UTC()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
		Admin: admin,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid.WithCause(err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	out := &Claims{
		Subject: claims.Subject,
		Admin:   claims.Admin,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// IsAdmin is the opaque admin check used by the HTTP layer
func (s *JWTService) IsAdmin(tokenString string) (bool, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return false, err
	}
	return claims.Admin, nil
}
