package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned by RedisStore when a command fails.
var ErrRedisUnavailable = rate.ErrRedisUnavailable

// RedisStore keeps request records in per-IP Redis sorted sets.
type RedisStore struct {
	window *rate.Window
}

// NewRedisStore returns a store writing keys under prefix ("rl" when empty).
// window bounds how long records are retained.
func NewRedisStore(client redis.UniversalClient, prefix string, window time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisStore{window: rate.New(client, prefix, window)}
}

func (s *RedisStore) Insert(ctx context.Context, ip string, at, expiresAt time.Time) error {
	return s.window.Insert(ctx, ip, at, expiresAt)
}

func (s *RedisStore) CountSince(ctx context.Context, ip string, threshold time.Time) (int64, error) {
	return s.window.CountSince(ctx, ip, threshold)
}

type record struct {
	at        time.Time
	expiresAt time.Time
}

// MemoryStore keeps request records in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]record)}
}

func (s *MemoryStore) Insert(_ context.Context, ip string, at, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[ip][:0]
	for _, r := range s.records[ip] {
		if r.expiresAt.After(at) {
			kept = append(kept, r)
		}
	}
	s.records[ip] = append(kept, record{at: at, expiresAt: expiresAt})
	return nil
}

func (s *MemoryStore) CountSince(_ context.Context, ip string, threshold time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, r := range s.records[ip] {
		if r.at.After(threshold) {
			n++
		}
	}
	return n, nil
}
