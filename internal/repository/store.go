package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// HallRepository persists halls.
type HallRepository interface {
	Create(ctx context.Context, h *model.Hall) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Hall, error)
	// GetForUpdate reads the hall and locks its row until the surrounding
	// transaction ends.  Scheduling serializes on this lock.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Hall, error)
	UpdateRows(ctx context.Context, id uuid.UUID, rows int) error
}

// SeatRepository persists the physical seats of halls.
type SeatRepository interface {
	// ListByHall returns seats ordered by row then number.
	ListByHall(ctx context.Context, hallID uuid.UUID) ([]model.Seat, error)
	DeleteByHall(ctx context.Context, hallID uuid.UUID) error
	CreateBulk(ctx context.Context, seats []model.Seat) error
}

// CategoryRepository persists seat categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.SeatCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SeatCategory, error)
	// ListByIDs returns the categories that exist among ids; missing ids are
	// silently absent from the result.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SeatCategory, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int) error
}

// FilmRepository persists films.
type FilmRepository interface {
	Create(ctx context.Context, f *model.Film) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Film, error)
}

// SessionRepository persists screenings.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListSlots returns the occupied intervals of the hall's sessions whose
	// [start, start+film duration) window intersects [from, to].
	ListSlots(ctx context.Context, hallID uuid.UUID, from, to time.Time) ([]model.Slot, error)
}

// TicketRepository persists tickets.
type TicketRepository interface {
	CreateBulk(ctx context.Context, tickets []model.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	// GetForUpdate reads the ticket and locks its row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	// ListForUpdate locks the given tickets in ascending id order and returns
	// those that exist, in that order.
	ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Ticket, error)
	Update(ctx context.Context, t *model.Ticket) error
	// ListBySession returns the session's tickets ordered by row then number,
	// optionally filtered by status.
	ListBySession(ctx context.Context, sessionID uuid.UUID, status *model.TicketStatus) ([]model.Ticket, error)
	// ListByPurchase locks and returns the tickets bound to a purchase.
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Ticket, error)
	DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	// ListExpired returns ids of unbound RESERVED tickets whose hold ended
	// at or before now.  The result is a snapshot; callers must re-check
	// each ticket under lock.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

// PurchaseRepository persists purchases.
type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PurchaseStatus, at time.Time) error
	// ListByClient returns the client's purchases, newest first.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Purchase, error)
}

// PaymentRepository persists payment attempts.
type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// ListByPurchase returns attempts oldest first.
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Payment, error)
}

// UserRepository resolves client contact details.  Rows are recorded from
// the token claims of the client that creates a purchase.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Upsert inserts u or replaces the email stored for u.ID.
	Upsert(ctx context.Context, u *model.User) error
}

// Store bundles every repository plus the transaction manager they share.
type Store struct {
	Tx         TxManager
	Halls      HallRepository
	Seats      SeatRepository
	Categories CategoryRepository
	Films      FilmRepository
	Sessions   SessionRepository
	Tickets    TicketRepository
	Purchases  PurchaseRepository
	Payments   PaymentRepository
	Users      UserRepository
}
