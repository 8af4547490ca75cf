package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// UserRepo manages the 'users' table, a cache of the id and email claims
// seen on purchasing clients' tokens.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT id,email FROM users WHERE id=? LIMIT 1", id).Scan(&u.ID, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert records u, replacing the stored email when the id already exists.
func (r *UserRepo) Upsert(ctx context.Context, u *model.User) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO users (id,email) VALUES (?,?) ON DUPLICATE KEY UPDATE email=VALUES(email)",
		u.ID, u.Email)
	return err
}
