package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Hour)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if !svc.VerifyPassword("hunter22", hash) {
		t.Fatal("correct password rejected")
	}
	if svc.VerifyPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Hour)

	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	userID, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %q", userID)
	}
}

func TestTokenRejections(t *testing.T) {
	svc := NewService("secret", time.Hour)
	other := NewService("different-secret", time.Hour)

	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	cases := []struct {
		name  string
		check func() (string, error)
	}{
		{"empty", func() (string, error) { return svc.ValidateToken("") }},
		{"garbage", func() (string, error) { return svc.ValidateToken("not.a.jwt") }},
		{"wrong secret", func() (string, error) { return other.ValidateToken(token) }},
	}
	for _, tc := range cases {
		if _, err := tc.check(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewService("secret", time.Millisecond)

	token, err := svc.GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
