package utils

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := NewSessionToken("secret", 42, now, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if !tok.Exp.After(now) {
		t.Fatalf("exp %v not after now", tok.Exp)
	}
	id, err := ParseSessionToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if id != 42 {
		t.Fatalf("id = %d, want 42", id)
	}
}

func TestSessionTokenUnique(t *testing.T) {
	now := time.Now()
	a, _ := NewSessionToken("secret", 1, now, time.Hour)
	b, _ := NewSessionToken("secret", 1, now, time.Hour)
	if a.Token == b.Token {
		t.Fatal("tokens issued in the same instant must differ")
	}
}

func TestParseSessionTokenRejects(t *testing.T) {
	good, _ := NewSessionToken("secret", 7, time.Now(), time.Hour)
	expired, _ := NewSessionToken("secret", 7, time.Now().Add(-2*time.Hour), time.Hour)

	tests := []struct {
		name, secret, raw string
	}{
		{"wrong secret", "other", good.Token},
		{"expired", "secret", expired.Token},
		{"garbage", "secret", "not-a-jwt"},
		{"empty", "secret", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.secret, tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("got %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	h := HashToken("abc")
	if len(h) != 64 {
		t.Fatalf("hash length = %d, want 64", len(h))
	}
	if h != HashToken("abc") || h == HashToken("abd") {
		t.Fatal("hash must be deterministic and input-sensitive")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "correct horse") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong horse") {
		t.Fatal("wrong password verified")
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	if err := CheckPasswordPolicy("1234567"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("7 chars: got %v", err)
	}
	if err := CheckPasswordPolicy("12345678"); err != nil {
		t.Fatalf("8 chars: got %v", err)
	}
}
