package service

import (
	"errors"
	"testing"
	"time"

	"merapaper/internal/domain"
)

func TestJWTService_GenerateParse(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := domain.User{ID: "u1", Email: "user@example.com"}

	token, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	claims, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", time.Nanosecond)
	token, err := svc.Generate(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Generate(domain.User{ID: "u1", Email: "u@x.com"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewJWTService("secret-b", time.Hour).ParseAccessToken(token); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	for _, tok := range []string{"", "   ", "not.a.jwt"} {
		if _, err := svc.ParseAccessToken(tok); !errors.Is(err, ErrJWTInvalid) {
			t.Fatalf("token %q: expected ErrJWTInvalid, got %v", tok, err)
		}
	}
}
