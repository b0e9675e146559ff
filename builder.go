package goGate

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/credential"
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store     account.Store
	mailer    Mailer
	auditSink AuditSink
	logger    *zap.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis backs the rate limiter with Redis sorted sets. Without it the
// limiter counts in process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithAccountStore(store account.Store) *Builder {
	b.store = store
	return b
}

// WithMailer sets the delivery of verification and reset codes. Without a
// mailer codes are still stored but never sent.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for the engine and the rate limiter.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("account store required")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}
	mailer := b.mailer
	if mailer == nil {
		logger.Warn("no mailer configured, verification and reset mail is discarded")
		mailer = discardMailer{}
	}

	hasher, err := password.New(cfg.passwordOptions())
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	hasher = password.ForLongInput(hasher)

	var counters ratelimit.CounterStore
	if b.redis != nil {
		counters = ratelimit.NewRedisStore(b.redis, cfg.RateLimit.RedisPrefix, cfg.RateLimit.Window)
	} else {
		logger.Warn("no redis client configured, rate limiting is process-local")
		counters = ratelimit.NewMemoryStore()
	}

	engine := &Engine{
		config:  cfg,
		store:   b.store,
		hasher:  hasher,
		codec:   credential.NewCodec(hasher),
		mailer:  mailer,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		log:     logger.Named("engine"),
		clock:   clock,
	}
	engine.limiter = ratelimit.New(counters, cfg.rateLimit(),
		ratelimit.WithClock(clock),
		ratelimit.WithLogger(logger.Named("ratelimit")),
	)

	b.built = true

	return engine, nil
}
