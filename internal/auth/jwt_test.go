package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"
	expires := time.Now().Add(time.Hour)

	token, err := GenerateToken(secret, "sess-1", 1, "asha", expires)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected user_id 1, got %d", claims.UserID)
	}
	if claims.Username != "asha" {
		t.Errorf("expected username 'asha', got %q", claims.Username)
	}
	if claims.SessionID() != "sess-1" {
		t.Errorf("expected session 'sess-1', got %q", claims.SessionID())
	}
	if diff := claims.ExpiresAt.Time.Sub(expires); diff < -time.Second || diff > time.Second {
		t.Errorf("token expiry too far from session expiry: diff=%v", diff)
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	if _, err := GenerateToken("secret", "", 1, "asha", time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error without session id")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "s", 1, "asha", time.Now().Add(time.Hour))

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, _ := GenerateToken("secret", "s", 1, "asha", time.Now().Add(-time.Minute))

	_, err := ValidateToken("secret", token)
	if err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("expected hash to differ from password")
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}
