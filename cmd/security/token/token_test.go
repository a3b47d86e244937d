package token

import (
	"strings"
	"testing"
)

func TestHashSHA256Hex_Deterministic(t *testing.T) {
	a := HashSHA256Hex("some-refresh-token")
	b := HashSHA256Hex("some-refresh-token")
	if a != b {
		t.Fatalf("same input produced different digests: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashSHA256Hex("another-token") {
		t.Fatalf("distinct inputs produced the same digest")
	}
}

func TestHashRefreshTokenHex_SHAFallbackWithoutKey(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	got := HashRefreshTokenHex("tok")
	if got != HashSHA256Hex("tok") {
		t.Fatalf("expected SHA-256 fallback without HMAC key")
	}
}

func TestHashRefreshTokenHex_HMACModeWithKey(t *testing.T) {
	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	got := HashRefreshTokenHex("tok")
	want := HashHMACSHA256Hex("tok", []byte("0123456789abcdef0123456789abcdef"))
	if got != want {
		t.Fatalf("expected HMAC digest when key is set")
	}
	if got == HashSHA256Hex("tok") {
		t.Fatalf("HMAC digest must differ from plain SHA-256")
	}
	if len(got) != 64 || strings.ToLower(got) != got {
		t.Fatalf("expected lowercase 64-char hex, got %q", got)
	}
}

func TestHMACKeyFromEnv_Policy(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyMissing {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HMACKeyFromEnv(32); err != ErrHMACKeyTooShort {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, strings.Repeat("k", 32))
	key, err := HMACKeyFromEnv(32)
	if err != nil {
		t.Fatalf("HMACKeyFromEnv: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(key))
	}
}
