package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "rl"

// Window stores request timestamps per IP in Redis sorted sets.
type Window struct {
	redis  redis.UniversalClient
	prefix string
	span   time.Duration
}

// New creates a Window. span bounds how far back trimming keeps members.
func New(redisClient redis.UniversalClient, prefix string, span time.Duration) *Window {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Window{
		redis:  redisClient,
		prefix: prefix,
		span:   span,
	}
}

func (w *Window) key(ip string) string {
	return w.prefix + ":" + ip
}

// Insert records one request for ip at the given time and refreshes the key expiry.
func (w *Window) Insert(ctx context.Context, ip string, at, expiresAt time.Time) error {
	key := w.key(ip)
	cutoff := at.Add(-w.span).UnixMilli()

	pipe := w.redis.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.PExpireAt(ctx, key, expiresAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// CountSince counts requests for ip strictly newer than threshold.
func (w *Window) CountSince(ctx context.Context, ip string, threshold time.Time) (int64, error) {
	n, err := w.redis.ZCount(ctx, w.key(ip), "("+strconv.FormatInt(threshold.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n, nil
}
