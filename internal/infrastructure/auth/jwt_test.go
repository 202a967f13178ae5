package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/auth"
)

func TestJWTManagerGenerateAndVerify(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("super-secret", time.Minute)

	user := &domain.User{
		ID:    "user-123",
		Email: "user@example.com",
		Name:  "Ravi",
		Role:  domain.RoleAdmin,
	}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if got := claims.User(); *got != *user {
		t.Fatalf("expected claims to match user, got %+v", got)
	}
}

func TestJWTManagerGenerateDefaultsSubjectToEmail(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	token, err := manager.Generate(&domain.User{Email: "op@example.com", Role: domain.RoleOperator})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}

	if claims.UserID != "op@example.com" || claims.Subject != "op@example.com" {
		t.Fatalf("expected subject to default to email, got %+v", claims)
	}
}

func TestJWTManagerGenerateRejectsIncompleteUsers(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	if _, err := manager.Generate(&domain.User{Role: domain.RoleAdmin}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without email, got %v", err)
	}

	if _, err := manager.Generate(&domain.User{Email: "a@b.c", Role: "root"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestJWTManagerVerifyErrors(t *testing.T) {
	t.Parallel()

	manager := auth.NewJWTManager("secret", time.Minute)

	expiredClaims := auth.Claims{
		UserID: "expired",
		Email:  "expired@example.com",
		Role:   domain.RoleViewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
			NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Minute)),
		},
	}

	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign expired token: %v", err)
	}

	if _, err := manager.Verify(expiredToken); err != domain.ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	otherManager := auth.NewJWTManager("other-secret", time.Minute)
	if _, err := otherManager.Verify(expiredToken); err == nil || err == domain.ErrExpiredToken {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	if _, err := manager.Verify("not-a-token"); err == nil {
		t.Fatalf("expected failure for malformed token")
	}

	foreign := expiredClaims
	foreign.Issuer = "someone-else"
	foreign.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
	foreignToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, foreign).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign foreign token: %v", err)
	}

	if _, err := manager.Verify(foreignToken); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for foreign issuer, got %v", err)
	}
}
