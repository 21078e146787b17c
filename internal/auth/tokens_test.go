package auth

import "testing"

func TestNewSecretFormatAndUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		secret, err := newSecret()
		if err != nil {
			t.Fatalf("newSecret: %v", err)
		}
		if !secretRe.MatchString(secret) {
			t.Fatalf("secret is not 64 lowercase hex chars: %q", secret)
		}
		if seen[secret] {
			t.Fatalf("duplicate secret minted: %q", secret)
		}
		seen[secret] = true
	}
}

func TestShortToken(t *testing.T) {
	t.Parallel()

	if got := shortToken("abcdefgh12345678"); got != "abcdefgh" {
		t.Fatalf("shortToken = %q, want prefix of 8", got)
	}
	if got := shortToken("abc"); got != "abc" {
		t.Fatalf("short inputs pass through, got %q", got)
	}
	if got := shortToken(""); got != "" {
		t.Fatalf("empty input passes through, got %q", got)
	}
}
