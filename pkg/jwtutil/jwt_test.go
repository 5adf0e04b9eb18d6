package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestGenerateAndValidate(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "k", Issuer: "coupon-test"})

	token, err := j.GenerateToken("user-1", "a@b.com", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := j.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "k", Issuer: "coupon-test"})

	expired, _ := j.GenerateToken("user-1", "", -time.Minute)
	otherKey, _ := NewJWTUtil(&JWTConfig{SigningKey: "other", Issuer: "coupon-test"}).GenerateToken("user-1", "", time.Minute)
	otherIssuer, _ := NewJWTUtil(&JWTConfig{SigningKey: "k", Issuer: "someone-else"}).GenerateToken("user-1", "", time.Minute)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "coupon-test", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("k"))

	cases := map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"no subject":   noSubject,
	}
	for name, token := range cases {
		if _, err := j.ValidateToken(token); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestValidateToken_SubjectFallback(t *testing.T) {
	j := NewJWTUtil(&JWTConfig{SigningKey: "k"})
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte("k"))

	claims, err := j.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-9" {
		t.Fatalf("expected subject fallback, got %q", claims.UserID)
	}
}
