package repository // repository for ticket persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// TicketRepo stores tickets in MySQL.  Row locks taken with FOR UPDATE are
// what serializes concurrent reservations of the same seat.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo given a DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

const ticketColumns = `id, session_id, seat_id, seat_row, seat_number, category_id, price_cents,
	status, reserved_by, reserved_until, purchase_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(s rowScanner) (model.Ticket, error) {
	var (
		t        model.Ticket
		by, pur  uuid.NullUUID
		until    sql.NullTime
		statusDB string
	)
	if err := s.Scan(&t.ID, &t.SessionID, &t.SeatID, &t.Row, &t.Number, &t.CategoryID, &t.PriceCents,
		&statusDB, &by, &until, &pur); err != nil {
		return t, err
	}
	t.Status = model.TicketStatus(statusDB)
	if by.Valid {
		t.ReservedBy = &by.UUID
	}
	if until.Valid {
		u := until.Time.UTC()
		t.ReservedUntil = &u
	}
	if pur.Valid {
		t.PurchaseID = &pur.UUID
	}
	return t, nil
}

func collectTickets(rows *sql.Rows) ([]model.Ticket, error) {
	defer rows.Close()
	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateBulk inserts multiple tickets in one statement.
func (r *TicketRepo) CreateBulk(ctx context.Context, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO tickets (id, session_id, seat_id, seat_row, seat_number, category_id, price_cents, status) VALUES `)
	args := make([]any, 0, len(tickets)*8)
	for i, t := range tickets {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, t.ID, t.SessionID, t.SeatID, t.Row, t.Number, t.CategoryID, t.PriceCents, string(t.Status))
	}
	_, err := conn(ctx, r.db).ExecContext(ctx, b.String(), args...)
	return mapDuplicate(err)
}

// GetByID returns the ticket or ErrNotFound.
func (r *TicketRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
}

// GetForUpdate returns the ticket with an exclusive row lock.
func (r *TicketRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ? FOR UPDATE`, id)
}

func (r *TicketRepo) get(ctx context.Context, q string, id uuid.UUID) (*model.Ticket, error) {
	t, err := scanTicket(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForUpdate locks the tickets in ascending id order.  Taking locks in
// a fixed order keeps two purchases over overlapping tickets from
// deadlocking.
func (r *TicketRepo) ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id FOR UPDATE`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// Update persists the mutable columns of a ticket.
func (r *TicketRepo) Update(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets SET status = ?, reserved_by = ?, reserved_until = ?, purchase_id = ? WHERE id = ?`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, string(t.Status), t.ReservedBy, t.ReservedUntil, t.PurchaseID, t.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ListBySession returns the tickets of a session ordered by seat position.
func (r *TicketRepo) ListBySession(ctx context.Context, sessionID uuid.UUID, status *model.TicketStatus) ([]model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE session_id = ?`
	args := []any{sessionID}
	if status != nil {
		q += ` AND status = ?`
		args = append(args, string(*status))
	}
	q += ` ORDER BY seat_row, seat_number`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// ListByPurchase locks and returns the tickets bound to a purchase.
func (r *TicketRepo) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE purchase_id = ? ORDER BY id FOR UPDATE`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, purchaseID)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

// DeleteBySession removes every ticket of a session regardless of status.
func (r *TicketRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM tickets WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListExpired returns ids of unbound holds that ended at or before now.
func (r *TicketRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	const q = `SELECT id FROM tickets
	           WHERE status = 'RESERVED' AND purchase_id IS NULL AND reserved_until <= ?
	           ORDER BY reserved_until LIMIT ?`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
