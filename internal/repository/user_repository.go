package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ttcenter/reservation-api/internal/model"
)

// UserRepo reads identity records.  The reservation core never writes to the
// users table; account management belongs to the accounts system.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

const userColumns = `id, email, password_hash, role, real_name, phone, hourly_rate_cents, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var phone sql.NullString
	var rate sql.NullInt64
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.RealName,
		&phone, &rate, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	if phone.Valid {
		p := phone.String
		u.Phone = &p
	}
	if rate.Valid {
		c := uint32(rate.Int64)
		u.HourlyRateCents = &c
	}
	return &u, nil
}

// GetByID resolves a user by primary key.  Unknown IDs fail fast with
// ErrUserNotFound; callers must never default a missing identity.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// GetByEmail resolves a user by login email for the auth endpoint.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// GetActiveByIDAndRole resolves a user that must exist, be active and carry
// the expected role.  Used to validate the counterpart of a relation
// application and the target coach of a change request.
func (r *UserRepo) GetActiveByIDAndRole(ctx context.Context, id uint64, role model.Role) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ? AND role = ? AND is_active = 1`
	return scanUser(r.db.QueryRowContext(ctx, q, id, string(role)))
}

// HourlyRateCentsTx returns the coach's hourly rate inside the caller's
// transaction.  A coach without a configured rate yields ErrRateUnavailable;
// an unknown or inactive coach yields ErrUserNotFound.
func (r *UserRepo) HourlyRateCentsTx(ctx context.Context, tx *sql.Tx, coachID uint64) (uint32, error) {
	const q = `SELECT hourly_rate_cents FROM users WHERE id = ? AND role = 'coach' AND is_active = 1`
	var rate sql.NullInt64
	if err := tx.QueryRowContext(ctx, q, coachID).Scan(&rate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	if !rate.Valid || rate.Int64 <= 0 {
		return 0, ErrRateUnavailable
	}
	return uint32(rate.Int64), nil
}
