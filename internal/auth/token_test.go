package auth

import (
	"testing"
	"time"

	"github.com/dosewell/dosewell/internal/model"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndParse(t *testing.T) {
	issuer := testIssuer()
	user := &model.User{ID: 42, Role: "user"}

	pair, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := issuer.Parse(pair.AccessToken, TokenAccess)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user_id = %d, want 42", claims.UserID)
	}
	if claims.Role != "user" {
		t.Errorf("role = %q, want user", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a token id")
	}

	refreshClaims, err := issuer.Parse(pair.RefreshToken, TokenRefresh)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refreshClaims.ID == claims.ID {
		t.Error("access and refresh tokens should carry distinct ids")
	}
}

func TestParseRejectsWrongKind(t *testing.T) {
	issuer := testIssuer()
	pair, _ := issuer.Issue(&model.User{ID: 1, Role: "user"})

	if _, err := issuer.Parse(pair.RefreshToken, TokenAccess); err != ErrWrongTokenKind {
		t.Errorf("err = %v, want ErrWrongTokenKind", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	pair, _ := testIssuer().Issue(&model.User{ID: 1, Role: "user"})

	other := NewTokenIssuer("other-secret", time.Minute, time.Hour)
	if _, err := other.Parse(pair.AccessToken, TokenAccess); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute, -time.Minute)
	pair, _ := issuer.Issue(&model.User{ID: 1, Role: "user"})

	if _, err := issuer.Parse(pair.AccessToken, TokenAccess); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := testIssuer().Parse("not-a-token", TokenAccess); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("expected wrong password to fail")
	}
}
