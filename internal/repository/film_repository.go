package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// FilmRepo stores films in MySQL.
type FilmRepo struct {
	db *sql.DB
}

// NewFilmRepo creates a FilmRepo.
func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{db: db} }

// Create inserts a film.
func (r *FilmRepo) Create(ctx context.Context, f *model.Film) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO films (id, title, duration_minutes, age_rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.Title, f.DurationMinutes, f.AgeRating, f.CreatedAt)
	return err
}

// GetByID returns the film or ErrNotFound.
func (r *FilmRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Film, error) {
	var f model.Film
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, title, duration_minutes, age_rating, created_at FROM films WHERE id = ?`, id).
		Scan(&f.ID, &f.Title, &f.DurationMinutes, &f.AgeRating, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
