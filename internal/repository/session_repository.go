package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// SessionRepo stores screenings in MySQL.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (id, film_id, hall_id, start_at, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, s.ID, s.FilmID, s.HallID, s.StartAt, s.CreatedAt, s.UpdatedAt)
	return err
}

// GetByID returns the session or ErrNotFound.
func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, film_id, hall_id, start_at, created_at, updated_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.FilmID, &s.HallID, &s.StartAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Update rewrites film, hall and start time of an existing session.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE sessions SET film_id = ?, hall_id = ?, start_at = ?, updated_at = ? WHERE id = ?`,
		s.FilmID, s.HallID, s.StartAt, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes a session.  Its tickets must be deleted first.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListSlots returns the occupied windows of the hall's sessions that
// intersect [from, to].  The end of each window is derived from the film
// duration so that it always reflects the current film data.
func (r *SessionRepo) ListSlots(ctx context.Context, hallID uuid.UUID, from, to time.Time) ([]model.Slot, error) {
	const q = `SELECT s.id, s.start_at, f.duration_minutes
	           FROM sessions s
	           JOIN films f ON f.id = s.film_id
	           WHERE s.hall_id = ?
	             AND s.start_at <= ?
	             AND s.start_at + INTERVAL f.duration_minutes MINUTE >= ?
	           ORDER BY s.start_at`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, hallID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []model.Slot
	for rows.Next() {
		var (
			sl  model.Slot
			dur int
		)
		if err := rows.Scan(&sl.SessionID, &sl.Start, &dur); err != nil {
			return nil, err
		}
		sl.End = sl.Start.Add(time.Duration(dur) * time.Minute)
		slots = append(slots, sl)
	}
	return slots, rows.Err()
}
