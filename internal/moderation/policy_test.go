package moderation

import (
	"testing"
	"time"

	"github.com/voxchat/voxbot/internal/config"
)

func TestPolicyDecide(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(config.Moderation{BanBaseMinutes: 30, BanStepMinutes: 30})

	tests := []struct {
		count        int
		wantKind     ActionKind
		wantDuration time.Duration
	}{
		{count: -1, wantKind: ActionNone},
		{count: 0, wantKind: ActionNone},
		{count: 1, wantKind: ActionWarn},
		{count: 2, wantKind: ActionTempBan, wantDuration: 60 * time.Minute},
		{count: 3, wantKind: ActionTempBan, wantDuration: 90 * time.Minute},
		{count: 4, wantKind: ActionTempBan, wantDuration: 120 * time.Minute},
		{count: 10, wantKind: ActionTempBan, wantDuration: 300 * time.Minute},
	}

	for _, tt := range tests {
		got := policy.Decide(tt.count)
		if got.Kind != tt.wantKind || got.Duration != tt.wantDuration {
			t.Fatalf("Decide(%d) = %#v, want kind %q duration %s", tt.count, got, tt.wantKind, tt.wantDuration)
		}
	}
}

func TestPolicyDurationLaw(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(config.Moderation{BanBaseMinutes: 30, BanStepMinutes: 30})
	for count := 2; count <= 50; count++ {
		want := time.Duration(30+30*(count-1)) * time.Minute
		got := policy.Decide(count)
		if got.Kind != ActionTempBan || got.Duration != want {
			t.Fatalf("Decide(%d) = %#v, want temp ban of %s", count, got, want)
		}
	}
}

func TestPolicyNormalizesInvalidConfig(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(config.Moderation{BanBaseMinutes: -5, BanStepMinutes: 0})
	got := policy.Decide(2)
	if got.Duration != 60*time.Minute {
		t.Fatalf("expected defaults to apply, got %s", got.Duration)
	}
}
