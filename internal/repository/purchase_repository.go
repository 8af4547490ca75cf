package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// PurchaseRepo stores purchases in MySQL.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo creates a PurchaseRepo.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

const purchaseColumns = `id, client_id, status, total_cents, created_at, updated_at`

func scanPurchase(s rowScanner) (model.Purchase, error) {
	var (
		p      model.Purchase
		status string
	)
	err := s.Scan(&p.ID, &p.ClientID, &status, &p.TotalCents, &p.CreatedAt, &p.UpdatedAt)
	p.Status = model.PurchaseStatus(status)
	return p, err
}

// Create inserts a purchase.
func (r *PurchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	const q = `INSERT INTO purchases (id, client_id, status, total_cents, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, p.ID, p.ClientID, string(p.Status), p.TotalCents, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetByID returns the purchase or ErrNotFound.
func (r *PurchaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ?`, id)
}

// GetForUpdate returns the purchase with an exclusive row lock.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = ? FOR UPDATE`, id)
}

func (r *PurchaseRepo) get(ctx context.Context, q string, id uuid.UUID) (*model.Purchase, error) {
	p, err := scanPurchase(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStatus moves a purchase to a new status.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PurchaseStatus, at time.Time) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE purchases SET status = ?, updated_at = ? WHERE id = ?`, string(status), at, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListByClient returns a client's purchases, newest first.
func (r *PurchaseRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Purchase, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE client_id = ? ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
