package ledger

import (
	"context"
	"sync"
	"time"
)

type warningEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryLedger is a mutex-guarded in-process Ledger used in tests and
// single-node development runs. Semantics match RedisLedger, including lazy
// eviction of expired entries.
type MemoryLedger struct {
	mu         sync.Mutex
	warnings   map[int64]warningEntry
	bans       map[int64]time.Time
	warningTTL time.Duration
	nowFn      func() time.Time
}

func NewMemoryLedger(warningTTL time.Duration) *MemoryLedger {
	if warningTTL <= 0 {
		warningTTL = 30 * 24 * time.Hour
	}
	return &MemoryLedger{
		warnings:   make(map[int64]warningEntry),
		bans:       make(map[int64]time.Time),
		warningTTL: warningTTL,
		nowFn:      time.Now,
	}
}

func (l *MemoryLedger) GetWarningCount(_ context.Context, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.warnings[userID]
	if !ok {
		return 0
	}
	if !entry.expiresAt.After(l.nowFn()) {
		delete(l.warnings, userID)
		return 0
	}
	return entry.count
}

func (l *MemoryLedger) IncrementWarning(_ context.Context, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	entry, ok := l.warnings[userID]
	if !ok || !entry.expiresAt.After(now) {
		entry = warningEntry{}
	}
	entry.count++
	entry.expiresAt = now.Add(l.warningTTL)
	l.warnings[userID] = entry
	return entry.count
}

func (l *MemoryLedger) IsBanned(_ context.Context, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.bans[userID]
	if !ok {
		return false
	}
	if !expiry.After(l.nowFn()) {
		delete(l.bans, userID)
		return false
	}
	return true
}

func (l *MemoryLedger) BanRemainingMinutes(_ context.Context, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.bans[userID]
	if !ok {
		return 0
	}
	return remainingMinutes(expiry, l.nowFn())
}

func (l *MemoryLedger) SetTemporaryBan(_ context.Context, userID int64, duration time.Duration) {
	if duration <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bans[userID] = l.nowFn().Add(duration)
}

func (l *MemoryLedger) ClearAll(_ context.Context, userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.warnings, userID)
	delete(l.bans, userID)
}
