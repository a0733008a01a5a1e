package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memSettings) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", apperrors.ErrSettingNotFound
	}
	return v, nil
}

func (m *memSettings) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTServiceWithSecret(DefaultJWTConfig(), []byte("test-secret"))

	token, err := svc.GenerateToken("store-owner", true)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "store-owner" || !claims.Admin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID == "" || claims.ExpiresAt.IsZero() {
		t.Fatalf("token id and expiry should be set: %+v", claims)
	}

	admin, err := svc.IsAdmin(token)
	if err != nil || !admin {
		t.Fatalf("IsAdmin = %v, %v", admin, err)
	}
}

func TestJWTService_NonAdmin(t *testing.T) {
	svc := NewJWTServiceWithSecret(DefaultJWTConfig(), []byte("test-secret"))

	token, _ := svc.GenerateToken("viewer", false)
	admin, err := svc.IsAdmin(token)
	if err != nil {
		t.Fatalf("IsAdmin failed: %v", err)
	}
	if admin {
		t.Fatal("non-admin token reported as admin")
	}
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTServiceWithSecret(DefaultJWTConfig(), []byte("secret-a"))
	verifier := NewJWTServiceWithSecret(DefaultJWTConfig(), []byte("secret-b"))

	token, _ := issuer.GenerateToken("x", true)
	if _, err := verifier.ValidateToken(token); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := verifier.ValidateToken("not-a-jwt"); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected invalid token for garbage, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTServiceWithSecret(JWTConfig{Issuer: "shopd", TokenDuration: time.Nanosecond}, []byte("s"))

	token, _ := svc.GenerateToken("x", true)
	time.Sleep(1100 * time.Millisecond)

	if _, err := svc.ValidateToken(token); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestNewJWTService_PersistsSecret(t *testing.T) {
	settings := &memSettings{values: map[string]string{}}
	ctx := context.Background()

	svc1, err := NewJWTService(ctx, DefaultJWTConfig(), settings)
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}
	if settings.values[secretSettingKey] == "" {
		t.Fatal("signing secret should be persisted")
	}

	svc2, err := NewJWTService(ctx, DefaultJWTConfig(), settings)
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}

	token, _ := svc1.GenerateToken("owner", true)
	if _, err := svc2.ValidateToken(token); err != nil {
		t.Fatalf("token should validate across restarts: %v", err)
	}
}
