package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/carecompanion/config"
	"github.com/dmehra2102/prod-golang-projects/carecompanion/internal/domain"
	"github.com/google/uuid"
)

func newTestManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "carecompanion-test",
	})
}

func TestJWTManager_AccessTokenCarriesPrincipal(t *testing.T) {
	m := newTestManager()
	id := uuid.New()

	pair, err := m.GenerateTokenPair(&domain.Claims{PrincipalID: id, Email: "ruth@example.com", Role: domain.RoleCaregiver})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q", pair.TokenType)
	}

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.PrincipalID != id || claims.Email != "ruth@example.com" || claims.Role != domain.RoleCaregiver {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTManager_TokenTypeIsEnforced(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateTokenPair(&domain.Claims{PrincipalID: uuid.New()})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	if _, err := m.ValidateAccessToken(pair.RefreshToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("refresh as access: err = %v, want ErrTokenTypeMismatch", err)
	}
	if _, err := m.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrTokenTypeMismatch) {
		t.Errorf("access as refresh: err = %v, want ErrTokenTypeMismatch", err)
	}
}

func TestJWTManager_Expired(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateTokenPair(&domain.Claims{PrincipalID: uuid.New()})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	m.now = time.Now
	if _, err := m.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	pair, err := newTestManager().GenerateTokenPair(&domain.Claims{PrincipalID: uuid.New()})
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret-another-secret-xx", Issuer: "carecompanion-test"})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
