package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	manager := NewManager("test-secret", 3600, 604800)

	tokenString, err := manager.GenerateAccessToken("mod-1", "asha", "moderator")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if tokenString == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}
	if claims.UserID != "mod-1" {
		t.Errorf("Expected user_id='mod-1', got '%s'", claims.UserID)
	}
	if claims.Username != "asha" {
		t.Errorf("Expected username='asha', got '%s'", claims.Username)
	}
	if claims.Role != "moderator" {
		t.Errorf("Expected role='moderator', got '%s'", claims.Role)
	}
}

func TestRefreshTokenOmitsRole(t *testing.T) {
	manager := NewManager("test-secret", 3600, 604800)

	tokenString, err := manager.GenerateRefreshToken("mod-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}
	if claims.UserID != "mod-1" {
		t.Errorf("Expected user_id='mod-1', got '%s'", claims.UserID)
	}
	if claims.Role != "" {
		t.Errorf("Expected empty role on refresh token, got '%s'", claims.Role)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	manager := NewManager("test-secret", 3600, 604800)
	other := NewManager("other-secret", 3600, 604800)

	tokenString, err := manager.GenerateAccessToken("mod-1", "asha", "moderator")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	_, err = other.VerifyToken(tokenString)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got: %v", err)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	// Negative expiry produces an already-expired token
	manager := NewManager("test-secret", -60, 604800)

	tokenString, err := manager.GenerateAccessToken("mod-1", "asha", "moderator")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	_, err = manager.VerifyToken(tokenString)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got: %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	manager := NewManager("test-secret", 3600, 604800)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := manager.VerifyToken(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for '%s', got: %v", tokenString, err)
		}
	}
}

func TestAccessTokenExpiryHorizon(t *testing.T) {
	manager := NewManager("test-secret", 3600, 604800)

	tokenString, err := manager.GenerateAccessToken("mod-1", "asha", "moderator")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > time.Hour {
		t.Errorf("Expected expiry within the next hour, got %v", remaining)
	}
}
