package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryOTPStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	_, rec, err := GenerateOTP(5 * time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := store.Save(ctx, "a@x.com", rec, 5*time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Get(ctx, "a@x.com")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.CodeHash != rec.CodeHash {
		t.Fatalf("record mismatch")
	}

	if err := store.Delete(ctx, "a@x.com"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "a@x.com"); ok {
		t.Fatalf("expected code gone after delete")
	}
}

func TestMemoryOTPStore_SaveOverwrites(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()

	_, first, _ := GenerateOTP(5 * time.Minute)
	_, second, _ := GenerateOTP(5 * time.Minute)
	if err := store.Save(ctx, "a@x.com", first, 5*time.Minute); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, "a@x.com", second, 5*time.Minute); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, ok, _ := store.Get(ctx, "a@x.com")
	if !ok || got.CodeHash != second.CodeHash {
		t.Fatalf("expected last write to win")
	}
}

func TestGenerateOTP_CodeShape(t *testing.T) {
	code, rec, err := GenerateOTP(5 * time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digit code, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}
	if !rec.Matches(code) {
		t.Fatalf("record does not match its own code")
	}
	if rec.Matches("000000") && code != "000000" {
		t.Fatalf("record matches arbitrary code")
	}
	if remaining := time.Until(rec.ExpiresAt); remaining < 4*time.Minute || remaining > 5*time.Minute {
		t.Fatalf("unexpected expiry distance: %v", remaining)
	}
}

func TestOTPRecord_EncodeDecode(t *testing.T) {
	_, rec, err := GenerateOTP(time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	decoded, err := decodeOTPRecord(rec.encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.CodeHash != rec.CodeHash {
		t.Fatalf("hash lost in round trip")
	}
	if decoded.ExpiresAt.Unix() != rec.ExpiresAt.Unix() {
		t.Fatalf("expiry lost in round trip")
	}

	if _, err := decodeOTPRecord("garbage"); err == nil {
		t.Fatalf("expected error for malformed record")
	}
}

func TestOTPRateLimiter_Window(t *testing.T) {
	limiter := NewOTPRateLimiter(time.Hour, 2)

	if !limiter.Allow("a@x.com") || !limiter.Allow("a@x.com") {
		t.Fatalf("first two requests should pass")
	}
	if limiter.Allow("a@x.com") {
		t.Fatalf("third request should be limited")
	}
	if !limiter.Allow("b@x.com") {
		t.Fatalf("other keys are independent")
	}
}
