package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// UnknownIP is the sentinel address for requests with no resolvable client IP.
	UnknownIP = "0.0.0.0"
	// DefaultQuota is the number of requests allowed per window.
	DefaultQuota = 15
	// DefaultWindow is the trailing window length.
	DefaultWindow = time.Second
)

// SessionMeta describes the caller's standing after a request was evaluated.
type SessionMeta struct {
	IP        string
	Remaining int64
	Counted   bool
}

// ShouldBlock reports whether the request exceeded the quota.
func (m SessionMeta) ShouldBlock() bool {
	return m.Remaining < 0
}

// CounterStore records request arrivals per IP and counts recent ones.
type CounterStore interface {
	Insert(ctx context.Context, ip string, at, expiresAt time.Time) error
	// CountSince counts records for ip with an arrival strictly after threshold.
	CountSince(ctx context.Context, ip string, threshold time.Time) (int64, error)
}

// Config sets the quota and window length.
type Config struct {
	Quota  int64
	Window time.Duration
}

// DefaultConfig returns 15 requests per second.
func DefaultConfig() Config {
	return Config{Quota: DefaultQuota, Window: DefaultWindow}
}

// Validate checks the quota and window.
func (c Config) Validate() error {
	if c.Quota <= 0 {
		return errors.New("rate limit quota must be > 0")
	}
	if c.Window <= 0 {
		return errors.New("rate limit window must be > 0")
	}
	return nil
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger sets the logger used for sentinel-IP anomalies.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Limiter evaluates requests against a CounterStore.
type Limiter struct {
	store  CounterStore
	config Config
	now    func() time.Time
	logger *zap.Logger
}

// New builds a Limiter. A zero config field falls back to its default.
func New(store CounterStore, cfg Config, opts ...Option) *Limiter {
	if cfg.Quota <= 0 {
		cfg.Quota = DefaultQuota
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	l := &Limiter{
		store:  store,
		config: cfg,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordAndEvaluate records the request when shouldCount is set and returns
// the caller's remaining budget.
func (l *Limiter) RecordAndEvaluate(ctx context.Context, ip string, shouldCount bool) (SessionMeta, error) {
	if ip == "" || ip == UnknownIP {
		l.logger.Warn("request without resolvable client ip; skipping rate limit")
		return SessionMeta{IP: UnknownIP, Remaining: l.config.Quota, Counted: false}, nil
	}

	now := l.now()
	if shouldCount {
		if err := l.store.Insert(ctx, ip, now, now.Add(l.config.Window)); err != nil {
			return SessionMeta{}, fmt.Errorf("record request: %w", err)
		}
	}

	count, err := l.store.CountSince(ctx, ip, now.Add(-l.config.Window))
	if err != nil {
		return SessionMeta{}, fmt.Errorf("count requests: %w", err)
	}

	return SessionMeta{
		IP:        ip,
		Remaining: l.config.Quota - count,
		Counted:   shouldCount,
	}, nil
}
