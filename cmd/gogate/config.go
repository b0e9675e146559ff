package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	goGate "github.com/MrEthical07/goGate"
)

// settings holds process wiring that is not part of goGate.Config.
type settings struct {
	Addr        string
	RedisAddr   string
	DatabaseURL string
	Engine      goGate.Config
}

// loadSettings overlays GOGATE_* variables on the defaults.
func loadSettings() (settings, error) {
	s := settings{
		Addr:        envOr("GOGATE_ADDR", ":8080"),
		RedisAddr:   os.Getenv("GOGATE_REDIS_ADDR"),
		DatabaseURL: os.Getenv("GOGATE_DATABASE_URL"),
		Engine:      goGate.DefaultConfig(),
	}
	cfg := &s.Engine

	var err error
	if cfg.RateLimit.Quota, err = envInt("GOGATE_RATELIMIT_QUOTA", cfg.RateLimit.Quota); err != nil {
		return s, err
	}
	if cfg.RateLimit.Window, err = envDuration("GOGATE_RATELIMIT_WINDOW", cfg.RateLimit.Window); err != nil {
		return s, err
	}
	cfg.RateLimit.RedisPrefix = envOr("GOGATE_RATELIMIT_PREFIX", cfg.RateLimit.RedisPrefix)
	if cfg.Gate.TrustProxyHeaders, err = envBool("GOGATE_TRUST_PROXY", cfg.Gate.TrustProxyHeaders); err != nil {
		return s, err
	}
	if cfg.Gate.MaxBodyBytes, err = envInt("GOGATE_MAX_BODY_BYTES", cfg.Gate.MaxBodyBytes); err != nil {
		return s, err
	}

	cfg.Password.Algorithm = envOr("GOGATE_PASSWORD_ALGORITHM", cfg.Password.Algorithm)
	if cfg.Account.ResetTTL, err = envDuration("GOGATE_RESET_TTL", cfg.Account.ResetTTL); err != nil {
		return s, err
	}

	cfg.Mail.From = envOr("GOGATE_MAIL_FROM", cfg.Mail.From)
	cfg.Mail.VerifyURL = envOr("GOGATE_MAIL_VERIFY_URL", cfg.Mail.VerifyURL)
	cfg.Mail.ResetURL = envOr("GOGATE_MAIL_RESET_URL", cfg.Mail.ResetURL)
	cfg.Mail.SMTPAddr = envOr("GOGATE_SMTP_ADDR", cfg.Mail.SMTPAddr)
	cfg.Mail.SMTPUsername = envOr("GOGATE_SMTP_USERNAME", cfg.Mail.SMTPUsername)
	cfg.Mail.SMTPPassword = envOr("GOGATE_SMTP_PASSWORD", cfg.Mail.SMTPPassword)

	if cfg.Audit.Enabled, err = envBool("GOGATE_AUDIT", cfg.Audit.Enabled); err != nil {
		return s, err
	}
	if cfg.Metrics.Enabled, err = envBool("GOGATE_METRICS", cfg.Metrics.Enabled); err != nil {
		return s, err
	}
	if cfg.Metrics.EnableLatencyHistograms, err = envBool("GOGATE_METRICS_LATENCY", cfg.Metrics.EnableLatencyHistograms && cfg.Metrics.Enabled); err != nil {
		return s, err
	}

	return s, cfg.Validate()
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
