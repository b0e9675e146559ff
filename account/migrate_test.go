package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/pressly/goose/v3"
)

func TestMigrateRunsEmbeddedMigrations(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	called := false
	gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		if dir != "." {
			t.Fatalf("unexpected migrations dir %q", dir)
		}
		return nil
	}

	if err := Migrate(context.Background(), nil); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if !called {
		t.Fatal("expected goose to run")
	}
}

func TestMigratePropagatesError(t *testing.T) {
	orig := gooseUp
	defer func() { gooseUp = orig }()

	gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	if err := Migrate(context.Background(), nil); err == nil {
		t.Fatal("expected migration error")
	}
}
