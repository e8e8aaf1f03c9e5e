package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// NewPostgres creates a new PostgreSQL connection pool
func NewPostgres(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("Connected to PostgreSQL")
	return db, nil
}

// ClosePostgres closes the database connection
func ClosePostgres(db *sqlx.DB) {
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		} else {
			log.Info().Msg("PostgreSQL connection closed")
		}
	}
}

// TxOptions tunes a ledger transaction.
type TxOptions struct {
	// LockTimeout bounds how long a statement waits on a row lock.
	// Zero leaves the server default in place.
	LockTimeout time.Duration
}

// RunInTx runs fn inside a READ COMMITTED transaction and commits when fn
// returns nil. Any error rolls the whole unit back.
func RunInTx(ctx context.Context, db *sqlx.DB, opts TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if opts.LockTimeout > 0 {
		// SET does not accept bind parameters; the value is an integer we format ourselves.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Transactor binds RunInTx to a pool for services that compose writes
// from several repositories in one transaction.
type Transactor struct {
	db   *sqlx.DB
	opts TxOptions
}

// NewTransactor creates a Transactor
func NewTransactor(db *sqlx.DB, opts TxOptions) *Transactor {
	return &Transactor{db: db, opts: opts}
}

// RunInTx runs fn in a transaction on the bound pool
func (t *Transactor) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return RunInTx(ctx, t.db, t.opts, fn)
}
