package ledger

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisLedger keeps warning counters and temporary bans in redis. Increments
// are a single pipelined INCR+EXPIRE so concurrent offenses never lose
// updates; bans carry their remaining duration as the key TTL.
type RedisLedger struct {
	client     redis.UniversalClient
	warningTTL time.Duration
	nowFn      func() time.Time
}

func NewRedisLedger(client redis.UniversalClient, warningTTL time.Duration) *RedisLedger {
	if warningTTL <= 0 {
		warningTTL = 30 * 24 * time.Hour
	}
	return &RedisLedger{
		client:     client,
		warningTTL: warningTTL,
		nowFn:      time.Now,
	}
}

func NewRedisLedgerFromURL(ctx context.Context, redisURL string, warningTTL time.Duration) (*RedisLedger, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return NewRedisLedger(rdb, warningTTL), nil
}

func (l *RedisLedger) GetWarningCount(ctx context.Context, userID int64) int {
	count, err := l.client.Get(ctx, warnKey(userID)).Int()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		l.warnStoreError(userID, "get warning count", err)
		return 0
	}
	return count
}

func (l *RedisLedger) IncrementWarning(ctx context.Context, userID int64) int {
	key := warnKey(userID)

	// single round-trip, the increment itself stays atomic
	multi := l.client.Pipeline()
	incr := multi.Incr(ctx, key)
	multi.Expire(ctx, key, l.warningTTL)
	if _, err := multi.Exec(ctx); err != nil {
		l.warnStoreError(userID, "increment warning", err)
		return 0
	}
	return int(incr.Val())
}

func (l *RedisLedger) IsBanned(ctx context.Context, userID int64) bool {
	expiry, present := l.banExpiry(ctx, userID)
	if !present {
		return false
	}
	if !expiry.After(l.nowFn()) {
		// lazily evict an entry that outlived its expiry
		if err := l.client.Del(ctx, banKey(userID)).Err(); err != nil {
			l.warnStoreError(userID, "evict expired ban", err)
		}
		return false
	}
	return true
}

func (l *RedisLedger) BanRemainingMinutes(ctx context.Context, userID int64) int {
	expiry, present := l.banExpiry(ctx, userID)
	if !present {
		return 0
	}
	return remainingMinutes(expiry, l.nowFn())
}

func (l *RedisLedger) SetTemporaryBan(ctx context.Context, userID int64, duration time.Duration) {
	if duration <= 0 {
		return
	}
	expiry := l.nowFn().Add(duration)
	if err := l.client.Set(ctx, banKey(userID), expiry.Format(time.RFC3339Nano), duration).Err(); err != nil {
		l.warnStoreError(userID, "set temporary ban", err)
	}
}

func (l *RedisLedger) ClearAll(ctx context.Context, userID int64) {
	if err := l.client.Del(ctx, warnKey(userID), banKey(userID)).Err(); err != nil {
		l.warnStoreError(userID, "clear ledger entries", err)
	}
}

func (l *RedisLedger) banExpiry(ctx context.Context, userID int64) (time.Time, bool) {
	value, err := l.client.Get(ctx, banKey(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, false
	}
	if err != nil {
		l.warnStoreError(userID, "get ban entry", err)
		return time.Time{}, false
	}
	expiry, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		l.warnStoreError(userID, "parse ban expiry", err)
		return time.Time{}, false
	}
	return expiry, true
}

func (l *RedisLedger) warnStoreError(userID int64, operation string, err error) {
	log.WithError(err).WithFields(log.Fields{
		"object":  "RedisLedger",
		"user_id": userID,
	}).Warnf("failed to %s, failing open", operation)
}
