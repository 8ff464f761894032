package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("6", "Lisa Parker", "lisa.parker@example.com", "QS", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ViewerID != "6" || claims.Name != "Lisa Parker" || claims.TeamRole != "QS" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken("1", "James Wilson", "james.wilson@example.com", "Supervisor", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expired, err := GenerateToken("1", "James Wilson", "james.wilson@example.com", "Supervisor", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ViewerID:         "1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other"},
		{name: "expired", token: expired, secret: "secret"},
		{name: "alg none", token: noneToken, secret: "secret"},
		{name: "garbage", token: "not.a.token", secret: "secret"},
		{name: "tampered", token: tamper(valid), secret: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// tamper swaps one signature character that carries no padding bits.
func tamper(token string) string {
	i := len(token) - 5
	repl := "A"
	if token[i] == 'A' {
		repl = "B"
	}
	return token[:i] + repl + token[i+1:]
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CheckPassword(hash, "password123"); err != nil {
		t.Fatalf("expected match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch")
	}
	if err := CheckPassword("", "password123"); err == nil {
		t.Fatal("expected mismatch for empty hash")
	}
}
