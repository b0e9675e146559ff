package goGate

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/ratelimit"
	"github.com/go-playground/validator/v10"
)

// Config holds every tunable of the engine, the gate and the process wiring.
// Build a Config with DefaultConfig, adjust it, then treat it as immutable.
type Config struct {
	RateLimit RateLimitConfig
	Password  PasswordConfig
	Account   AccountConfig
	Mail      MailConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Gate      GateConfig
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig sizes the per-IP sliding window.
type RateLimitConfig struct {
	Quota       int64         `validate:"gt=0"`
	Window      time.Duration `validate:"gt=0"`
	RedisPrefix string        `validate:"required"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects and tunes the password hasher. The same hasher
// produces the token challenge.
type PasswordConfig struct {
	Algorithm   string `validate:"oneof=argon2id bcrypt"`
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig tunes the account lifecycle.
type AccountConfig struct {
	// ResetTTL bounds how long a password reset code stays usable.
	ResetTTL time.Duration `validate:"gt=0"`
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig addresses outgoing verification and reset mail. An empty
// SMTPAddr logs mail instead of sending it.
type MailConfig struct {
	From         string `validate:"required,email"`
	VerifyURL    string `validate:"required,url"`
	ResetURL     string `validate:"required,url"`
	SMTPAddr     string `validate:"omitempty,hostname_port"`
	SMTPUsername string
	SMTPPassword string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int `validate:"gte=0"`
	DropIfFull bool
	// SinkTimeout bounds delivery of one event to the sink. Zero disables it.
	SinkTimeout time.Duration `validate:"gte=0"`
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
GATE CONFIG
====================================
*/

// GateConfig controls how the gate resolves client addresses and how much
// body it reads.
type GateConfig struct {
	// TrustProxyHeaders reads X-Forwarded-For / X-Real-IP before RemoteAddr.
	TrustProxyHeaders bool
	// MaxBodyBytes caps bodies read for lint rules. Zero keeps the gate default.
	MaxBodyBytes int64 `validate:"gte=0"`
}

// DefaultConfig returns 15 requests per second per IP, argon2id hashing, a
// 15 minute reset window and audit/metrics enabled.
func DefaultConfig() Config {
	argon := password.DefaultConfig()
	rl := ratelimit.DefaultConfig()

	return Config{
		RateLimit: RateLimitConfig{
			Quota:       rl.Quota,
			Window:      rl.Window,
			RedisPrefix: "rl",
		},
		Password: PasswordConfig{
			Algorithm:   password.AlgorithmArgon2id,
			Memory:      argon.Memory,
			Time:        argon.Time,
			Parallelism: argon.Parallelism,
			SaltLength:  argon.SaltLength,
			KeyLength:   argon.KeyLength,
			BcryptCost:  password.DefaultBcryptCost,
		},
		Account: AccountConfig{
			ResetTTL: 15 * time.Minute,
		},
		Mail: MailConfig{
			From:      "noreply@localhost.localdomain",
			VerifyURL: "http://localhost:8080/verify-email",
			ResetURL:  "http://localhost:8080/reset-password",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize:  1024,
			DropIfFull:  true,
			SinkTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

var configValidator = validator.New()

// Validate checks struct tags first, then the cross-field rules tags cannot
// express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s failed %q", fe.Namespace(), fe.Tag())
		}
		return err
	}

	switch c.Password.Algorithm {
	case password.AlgorithmArgon2id:
		if c.Password.Memory < password.MinMemoryKB || c.Password.Time == 0 || c.Password.Parallelism == 0 {
			return fmt.Errorf("argon2id Memory must be >= %d and Time and Parallelism > 0", password.MinMemoryKB)
		}
		if c.Password.SaltLength < password.MinSaltLength || c.Password.KeyLength < password.MinKeyLength {
			return fmt.Errorf("argon2id SaltLength must be >= %d and KeyLength >= %d", password.MinSaltLength, password.MinKeyLength)
		}
	case password.AlgorithmBcrypt:
		if c.Password.BcryptCost < password.MinBcryptCost || c.Password.BcryptCost > password.MaxBcryptCost {
			return fmt.Errorf("bcrypt cost must be within [%d, %d]", password.MinBcryptCost, password.MaxBcryptCost)
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}

func (c Config) rateLimit() ratelimit.Config {
	return ratelimit.Config{Quota: c.RateLimit.Quota, Window: c.RateLimit.Window}
}

func (c Config) passwordOptions() password.Options {
	return password.Options{
		Algorithm: c.Password.Algorithm,
		Argon2: password.Config{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
		},
		Bcrypt: password.BcryptConfig{Cost: c.Password.BcryptCost},
	}
}
