// Package dbregistry caches one *sql.DB per logical database name, opening
// each handle on first use.
package dbregistry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Database names used by the service.
const (
	// Auth holds the accounts table.
	Auth = "auth"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("database registry closed")

// Opener opens and verifies a handle for the named database.
type Opener func(ctx context.Context, name string) (*sql.DB, error)

// Registry is safe for concurrent use. Concurrent first calls for the same
// name open a single handle.
type Registry struct {
	open Opener

	mu     sync.Mutex
	dbs    map[string]*sql.DB
	closed bool
}

func New(open Opener) *Registry {
	return &Registry{open: open, dbs: make(map[string]*sql.DB)}
}

// Get returns the cached handle for name, opening it when absent.
func (r *Registry) Get(ctx context.Context, name string) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if db, ok := r.dbs[name]; ok {
		return db, nil
	}

	db, err := r.open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", name, err)
	}
	r.dbs[name] = db
	return db, nil
}

// Names lists the databases opened so far.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.dbs))
	for name := range r.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every cached handle and rejects further Gets.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for name, db := range r.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database %s: %w", name, err))
		}
	}
	r.dbs = nil
	return errors.Join(errs...)
}

// PoolConfig sizes each opened handle.
type PoolConfig struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PostgresOpener derives a connection per database name from a base DSN and
// opens it through the pgx stdlib driver.
func PostgresOpener(dsn string, pool PoolConfig) (Opener, error) {
	base, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	return func(ctx context.Context, name string) (*sql.DB, error) {
		cfg := base.Copy()
		cfg.Database = name

		db := stdlib.OpenDB(*cfg)
		if pool.MaxOpenConns > 0 {
			db.SetMaxOpenConns(pool.MaxOpenConns)
			db.SetMaxIdleConns(pool.MaxOpenConns)
		}
		if pool.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(pool.ConnMaxLifetime)
		}

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping: %w", err)
		}
		return db, nil
	}, nil
}
