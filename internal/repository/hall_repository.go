package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// HallRepo stores halls in MySQL.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = `id, name, seat_rows, created_at, updated_at`

// Create inserts a new hall.  ID and timestamps must already be set by
// the caller.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const q = `INSERT INTO halls (id, name, seat_rows, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, h.ID, h.Name, h.Rows, h.CreatedAt, h.UpdatedAt)
	return err
}

// GetByID returns the hall or ErrNotFound.
func (r *HallRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Hall, error) {
	return r.get(ctx, `SELECT `+hallColumns+` FROM halls WHERE id = ?`, id)
}

// GetForUpdate returns the hall and holds an exclusive row lock on it for
// the rest of the transaction.
func (r *HallRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Hall, error) {
	return r.get(ctx, `SELECT `+hallColumns+` FROM halls WHERE id = ? FOR UPDATE`, id)
}

func (r *HallRepo) get(ctx context.Context, q string, id uuid.UUID) (*model.Hall, error) {
	var h model.Hall
	err := conn(ctx, r.db).QueryRowContext(ctx, q, id).
		Scan(&h.ID, &h.Name, &h.Rows, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateRows changes the declared row count of a hall.
func (r *HallRepo) UpdateRows(ctx context.Context, id uuid.UUID, rows int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE halls SET seat_rows = ?, updated_at = ? WHERE id = ?`, rows, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// expectOne maps "no row touched" onto ErrNotFound.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
