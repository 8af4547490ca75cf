package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// SeatRepo stores the physical seats of halls in MySQL.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo creates a new SeatRepo with the given DB.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListByHall returns all seats of a hall ordered by row then number.
func (r *SeatRepo) ListByHall(ctx context.Context, hallID uuid.UUID) ([]model.Seat, error) {
	const q = `SELECT id, hall_id, seat_row, seat_number, category_id
	           FROM seats WHERE hall_id = ? ORDER BY seat_row, seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.Row, &s.Number, &s.CategoryID); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// DeleteByHall removes every seat of a hall.  Tickets keep their own
// snapshots, so no ticket row references seats through a foreign key.
func (r *SeatRepo) DeleteByHall(ctx context.Context, hallID uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM seats WHERE hall_id = ?`, hallID)
	return err
}

// CreateBulk inserts multiple seats in one statement.  A duplicate
// (hall, row, number) surfaces as ErrDuplicate.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (id, hall_id, seat_row, seat_number, category_id) VALUES `)
	args := make([]any, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, s.ID, s.HallID, s.Row, s.Number, s.CategoryID)
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...)
	return mapDuplicate(err)
}
