package moderation

import (
	"time"

	"github.com/voxchat/voxbot/internal/config"
)

type ActionKind string

const (
	ActionNone    ActionKind = "none"
	ActionWarn    ActionKind = "warn"
	ActionTempBan ActionKind = "temp_ban"
)

type Action struct {
	Kind     ActionKind
	Duration time.Duration
}

// Policy maps a post-increment warning count to a punishment. Deterministic,
// no side effects.
type Policy struct {
	banBase time.Duration
	banStep time.Duration
}

func NewPolicy(cfg config.Moderation) Policy {
	return Policy{
		banBase: normalizeMinutes(cfg.BanBaseMinutes, 30),
		banStep: normalizeMinutes(cfg.BanStepMinutes, 30),
	}
}

func normalizeMinutes(minutes int, fallback int) time.Duration {
	if minutes <= 0 {
		minutes = fallback
	}
	return time.Duration(minutes) * time.Minute
}

// Decide returns the action for the given warning count. The first offense is
// a warning, every repeat offense is a temporary ban whose duration grows by
// one step per offense, unbounded. A non-positive count means the counter
// store was unavailable and no punishment is applied.
func (p Policy) Decide(count int) Action {
	switch {
	case count <= 0:
		return Action{Kind: ActionNone}
	case count == 1:
		return Action{Kind: ActionWarn}
	default:
		return Action{
			Kind:     ActionTempBan,
			Duration: p.banBase + time.Duration(count-1)*p.banStep,
		}
	}
}
