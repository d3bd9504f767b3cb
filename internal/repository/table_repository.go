package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ttcenter/reservation-api/internal/model"
)

// TableRepo reads the table registry.  Tables are created and retired by
// campus administration; the reservation core only needs lookups and
// availability queries.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, campus_id, number, name, status, description, is_active, created_at, updated_at`

func scanTableRow(scan func(dest ...any) error) (*model.Table, error) {
	var t model.Table
	var name, desc sql.NullString
	err := scan(&t.ID, &t.CampusID, &t.Number, &name, &t.Status, &desc,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		n := name.String
		t.Name = &n
	}
	if desc.Valid {
		d := desc.String
		t.Description = &d
	}
	return &t, nil
}

// GetByID returns a single table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
	t, err := scanTableRow(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByIDTx is GetByID under the caller's transaction, locking the row so
// the table's status cannot change before the transaction commits.
func (r *TableRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ? FOR UPDATE`
	t, err := scanTableRow(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns active tables, optionally filtered to one campus, ordered by
// campus and table number for stable output.
func (r *TableRepo) List(ctx context.Context, campusID *uint64) ([]model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM tables WHERE is_active = 1`
	args := []any{}
	if campusID != nil {
		q += ` AND campus_id = ?`
		args = append(args, *campusID)
	}
	q += ` ORDER BY campus_id, number`
	return r.queryTables(ctx, q, args...)
}

// ListAvailable returns active, available tables with no pending or
// confirmed booking overlapping [start, end).  The overlap predicate matches
// the one the booking engine locks on, so a table returned here can still
// lose a race and must be re-checked at booking time.
func (r *TableRepo) ListAvailable(ctx context.Context, campusID *uint64, start, end time.Time) ([]model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM tables t
	      WHERE t.is_active = 1 AND t.status = 'available'
	        AND NOT EXISTS (
	              SELECT 1 FROM bookings b
	              WHERE b.table_id = t.id
	                AND b.status IN ('pending','confirmed')
	                AND b.start_time < ? AND b.end_time > ?)`
	args := []any{end, start}
	if campusID != nil {
		q += ` AND t.campus_id = ?`
		args = append(args, *campusID)
	}
	q += ` ORDER BY t.campus_id, t.number`
	return r.queryTables(ctx, q, args...)
}

func (r *TableRepo) queryTables(ctx context.Context, q string, args ...any) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTableRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}
