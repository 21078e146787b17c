package ledger

import (
	"context"
	"fmt"
	"time"
)

// Ledger is the expiring warning-counter and temporary-ban store, keyed by
// user identity. Implementations fail open: a backing-store outage reads as
// "no warnings, not banned" so moderation never blocks on infrastructure.
type Ledger interface {
	GetWarningCount(ctx context.Context, userID int64) int
	IncrementWarning(ctx context.Context, userID int64) int
	IsBanned(ctx context.Context, userID int64) bool
	BanRemainingMinutes(ctx context.Context, userID int64) int
	SetTemporaryBan(ctx context.Context, userID int64, duration time.Duration)
	ClearAll(ctx context.Context, userID int64)
}

const (
	warnKeyPrefix = "warn/"
	banKeyPrefix  = "tmpban/"
)

func warnKey(userID int64) string {
	return fmt.Sprintf("%s%d", warnKeyPrefix, userID)
}

func banKey(userID int64) string {
	return fmt.Sprintf("%s%d", banKeyPrefix, userID)
}

func remainingMinutes(expiry, now time.Time) int {
	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Minute - 1) / time.Minute)
}
