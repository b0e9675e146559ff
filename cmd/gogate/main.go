// Command gogate serves the account API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/account"
	"github.com/MrEthical07/goGate/api"
	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/internal/dbregistry"
	"github.com/MrEthical07/goGate/logging"
	"github.com/MrEthical07/goGate/mail"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownGrace = 5 * time.Second

func main() {
	_ = godotenv.Load()

	log, err := logging.New(logging.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Error("gogate stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.Logger) error {
	s, err := loadSettings()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, closeRedis, err := openRedis(s.RedisAddr, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	store, closeStore, err := openStore(ctx, s.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer closeStore()

	mailer, err := newMailer(s.Engine, log)
	if err != nil {
		return err
	}

	engine, err := goGate.New().
		WithConfig(s.Engine).
		WithRedis(rdb).
		WithAccountStore(store).
		WithMailer(mailer).
		WithAuditSink(goGate.NewZapSink(log)).
		WithLogger(log).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	g := gate.New(engine.RateLimiter(), engine,
		gate.WithLogger(log),
		gate.WithMetrics(engine.Metrics()),
		gate.WithTrustedProxy(s.Engine.Gate.TrustProxyHeaders),
		gate.WithMaxBodyBytes(s.Engine.Gate.MaxBodyBytes),
	)
	router := api.NewRouter(engine, g, api.Options{
		Logger:         log,
		MetricsHandler: prometheus.New(engine).Handler(),
	})

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", s.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", zap.Error(err))
	}
	return nil
}

// openRedis connects to addr, or starts an embedded miniredis when addr is
// empty.
func openRedis(addr string, log *zap.Logger) (redis.UniversalClient, func(), error) {
	if addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start embedded redis: %w", err)
	}
	log.Warn("GOGATE_REDIS_ADDR not set, using embedded redis", zap.String("addr", mr.Addr()))
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// openStore migrates and opens the Postgres account store, or falls back to
// memory when dsn is empty.
func openStore(ctx context.Context, dsn string, log *zap.Logger) (account.Store, func(), error) {
	if dsn == "" {
		log.Warn("GOGATE_DATABASE_URL not set, accounts are kept in memory")
		return account.NewMemoryStore(), func() {}, nil
	}

	opener, err := dbregistry.PostgresOpener(dsn, dbregistry.PoolConfig{
		MaxOpenConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, nil, err
	}
	dbs := dbregistry.New(opener)
	closeDBs := func() {
		if err := dbs.Close(); err != nil {
			log.Warn("close databases", zap.Error(err))
		}
	}

	db, err := dbs.Get(ctx, dbregistry.Auth)
	if err != nil {
		closeDBs()
		return nil, nil, fmt.Errorf("open %s database: %w", dbregistry.Auth, err)
	}
	if err := account.Migrate(ctx, db); err != nil {
		closeDBs()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return account.NewPostgresStore(db), closeDBs, nil
}

func newMailer(cfg goGate.Config, log *zap.Logger) (*mail.Composer, error) {
	var sender mail.Sender
	if cfg.Mail.SMTPAddr == "" {
		sender = mail.NewLogSender(log)
	} else {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Addr:     cfg.Mail.SMTPAddr,
			From:     cfg.Mail.From,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
		})
	}
	return mail.NewComposer(sender, mail.Config{
		VerifyURL:     cfg.Mail.VerifyURL,
		ResetURL:      cfg.Mail.ResetURL,
		ResetValidFor: cfg.Account.ResetTTL,
	})
}
