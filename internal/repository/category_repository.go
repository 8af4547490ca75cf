package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// CategoryRepo stores seat categories in MySQL.
type CategoryRepo struct {
	db *sql.DB
}

// NewCategoryRepo creates a CategoryRepo.
func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category.
func (r *CategoryRepo) Create(ctx context.Context, c *model.SeatCategory) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO seat_categories (id, name, price_cents) VALUES (?, ?, ?)`, c.ID, c.Name, c.PriceCents)
	return err
}

// GetByID returns the category or ErrNotFound.
func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.SeatCategory, error) {
	var c model.SeatCategory
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, price_cents FROM seat_categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.PriceCents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByIDs returns the categories among ids that exist.
func (r *CategoryRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SeatCategory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, name, price_cents FROM seat_categories WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SeatCategory
	for rows.Next() {
		var c model.SeatCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdatePrice changes the price applied to tickets created from now on.
func (r *CategoryRepo) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE seat_categories SET price_cents = ? WHERE id = ?`, priceCents, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
