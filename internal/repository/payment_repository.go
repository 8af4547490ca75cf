package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// PaymentRepo stores settlement attempts in MySQL.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo creates a PaymentRepo.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create records a payment attempt.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO payments (id, purchase_id, status, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.PurchaseID, string(p.Status), p.CreatedAt)
	return err
}

// GetByID returns the payment or ErrNotFound.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var (
		p      model.Payment
		status string
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, purchase_id, status, created_at FROM payments WHERE id = ?`, id).
		Scan(&p.ID, &p.PurchaseID, &status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return &p, nil
}

// ListByPurchase returns every attempt for a purchase, oldest first.
func (r *PaymentRepo) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Payment, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, purchase_id, status, created_at FROM payments WHERE purchase_id = ? ORDER BY created_at`, purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payment
	for rows.Next() {
		var (
			p      model.Payment
			status string
		)
		if err := rows.Scan(&p.ID, &p.PurchaseID, &status, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Status = model.PaymentStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}
