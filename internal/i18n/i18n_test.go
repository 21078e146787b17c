package i18n

import (
	"strings"
	"testing"
)

func TestGetEnglishPassthrough(t *testing.T) {
	key := "Verification failed."
	if got := Get(key, "en"); got != key {
		t.Fatalf("english must pass through, got %q", got)
	}
}

func TestGetRussianTranslation(t *testing.T) {
	got := Get("Verification failed.", "ru")
	if got == "Verification failed." {
		t.Fatalf("expected a russian translation, got the key back")
	}
	if !strings.Contains(got, "вход") {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestGetUnknownKeyFallsBack(t *testing.T) {
	key := "There is no such phrase."
	if got := Get(key, "ru"); got != key {
		t.Fatalf("unknown keys fall back to the key, got %q", got)
	}
}

func TestGetUnknownLanguageFallsBack(t *testing.T) {
	key := "Verification failed."
	if got := Get(key, "xx"); got != key {
		t.Fatalf("unknown languages fall back to the key, got %q", got)
	}
}
