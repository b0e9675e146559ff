package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by PostgresStore.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is a Store backed by the accounts table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore binds a store to db. Run Migrate first.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `account_id, email, password_hash, name, email_verified, is_banned,
		creation_timestamp, email_verification_id, reset_request_id, reset_request_timestamp`

func (s *PostgresStore) Create(ctx context.Context, acc *Account) error {
	query :=
		`INSERT INTO accounts (account_id, email, password_hash, name, email_verified, is_banned,
		 creation_timestamp, email_verification_id, reset_request_id, reset_request_timestamp)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		acc.AccountID, acc.Email, acc.PasswordHash, acc.Name, acc.EmailVerified, acc.IsBanned,
		acc.CreationTimestamp, acc.EmailVerificationID, acc.ResetRequestID, acc.ResetRequestTimestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "accounts_email_key" {
				return ErrEmailTaken
			}
			return ErrExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, acc *Account) error {
	query :=
		`UPDATE accounts SET password_hash = $2, name = $3, email_verified = $4, is_banned = $5,
		 email_verification_id = $6, reset_request_id = $7, reset_request_timestamp = $8
		 WHERE account_id = $1`

	res, err := s.db.ExecContext(ctx, query,
		acc.AccountID, acc.PasswordHash, acc.Name, acc.EmailVerified, acc.IsBanned,
		acc.EmailVerificationID, acc.ResetRequestID, acc.ResetRequestTimestamp)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID string) (*Account, error) {
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM accounts WHERE account_id = $1`, accountID)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM accounts WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg string) (*Account, error) {
	acc := &Account{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&acc.AccountID, &acc.Email, &acc.PasswordHash, &acc.Name, &acc.EmailVerified, &acc.IsBanned,
		&acc.CreationTimestamp, &acc.EmailVerificationID, &acc.ResetRequestID, &acc.ResetRequestTimestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}
