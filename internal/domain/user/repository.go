package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
)

// Repository defines account data access interface
type Repository interface {
	// CreateTx inserts the account inside the caller's transaction so the
	// wallet row can be opened atomically with it.
	CreateTx(ctx context.Context, tx *sqlx.Tx, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateKYCStatus(ctx context.Context, id uuid.UUID, status KYCStatus) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new account repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `id, phone, name, password_hash, role, kyc_status, is_disabled, created_at, updated_at`

// CreateTx creates a new account
func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, user *User) error {
	if user.KYCStatus == "" {
		user.KYCStatus = KYCNone
	}
	query := `
		INSERT INTO accounts (id, phone, name, password_hash, role, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := tx.QueryRowxContext(ctx, query,
		user.ID, user.Phone, user.Name, user.PasswordHash, user.Role, user.KYCStatus,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "accounts_phone_key") {
			return ErrPhoneAlreadyExists
		}
		return fmt.Errorf("user repository create: %w", err)
	}
	return nil
}

// GetByID returns account by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `SELECT `+selectColumns+` FROM accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByPhone returns account by phone number
func (r *repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, `SELECT `+selectColumns+` FROM accounts WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Exists reports whether an account with id is present
func (r *repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id)
	return exists, err
}

// UpdateKYCStatus sets the KYC status of an account
func (r *repository) UpdateKYCStatus(ctx context.Context, id uuid.UUID, status KYCStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET kyc_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update kyc status: %w", err)
	}
	return requireRow(res)
}

// SetDisabled soft-disables or re-enables an account. The wallet and its
// transaction log are left untouched.
func (r *repository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_disabled = $2, updated_at = NOW() WHERE id = $1`, id, disabled)
	if err != nil {
		return fmt.Errorf("set disabled: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
