package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// sweepBatch bounds how many expired holds one sweep pass loads at a time.
const sweepBatch = 500

// TicketService manages holds on individual tickets.
type TicketService struct {
	base
}

// NewTicketService creates a TicketService.
func NewTicketService(store *repository.Store, opts ...Option) *TicketService {
	return &TicketService{base: newBase(store, opts)}
}

// Reserve places a ReservationHold on an AVAILABLE ticket for the caller.
func (s *TicketService) Reserve(ctx context.Context, ticketID uuid.UUID, caller domain.Caller) (*model.Ticket, error) {
	var out *model.Ticket
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.store.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFound(err, "ticket", ticketID)
		}
		if t.Status != model.TicketAvailable {
			return domain.InvalidState("ticket %s is %s, not AVAILABLE", ticketID, t.Status)
		}
		until := s.now().Add(ReservationHold)
		holder := caller.UserID
		t.Status = model.TicketReserved
		t.ReservedBy = &holder
		t.ReservedUntil = &until
		if err := s.store.Tickets.Update(ctx, t); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("ticket reserved", zap.Stringer("ticket_id", ticketID), zap.Stringer("user_id", caller.UserID))
	return out, nil
}

// CancelReservation releases the caller's own unbound hold.
func (s *TicketService) CancelReservation(ctx context.Context, ticketID uuid.UUID, caller domain.Caller) (*model.Ticket, error) {
	var out *model.Ticket
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.store.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFound(err, "ticket", ticketID)
		}
		if t.Status != model.TicketReserved {
			return domain.InvalidState("ticket %s is %s, not RESERVED", ticketID, t.Status)
		}
		if t.Bound() {
			return domain.InvalidState("ticket %s belongs to purchase %s", ticketID, *t.PurchaseID)
		}
		if t.ReservedBy == nil || *t.ReservedBy != caller.UserID {
			return domain.Forbidden("ticket %s is reserved by another user", ticketID)
		}
		t.Release()
		if err := s.store.Tickets.Update(ctx, t); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExpireReservations returns every unbound hold that ended at or before now
// to AVAILABLE and reports how many tickets were released.  Each ticket is
// released in its own transaction; a failure is logged and the sweep moves
// on.
func (s *TicketService) ExpireReservations(ctx context.Context, now time.Time) (int, error) {
	released := 0
	for {
		ids, err := s.store.Tickets.ListExpired(ctx, now, sweepBatch)
		if err != nil {
			return released, fmt.Errorf("list expired reservations: %w", err)
		}
		progress := 0
		for _, id := range ids {
			if ctx.Err() != nil {
				return released, ctx.Err()
			}
			ok, err := s.expireOne(ctx, id, now)
			if err != nil {
				s.log.Warn("release expired reservation failed", zap.Stringer("ticket_id", id), zap.Error(err))
				continue
			}
			if ok {
				progress++
			}
		}
		released += progress
		if len(ids) < sweepBatch || progress == 0 {
			return released, nil
		}
	}
}

// expireOne re-checks the ticket under its row lock because it may have been
// purchased or cancelled since it was listed.
func (s *TicketService) expireOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	released := false
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		t, err := s.store.Tickets.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Status != model.TicketReserved || t.Bound() || t.ReservedUntil == nil || t.ReservedUntil.After(now) {
			return nil
		}
		t.Release()
		if err := s.store.Tickets.Update(ctx, t); err != nil {
			return err
		}
		released = true
		return nil
	})
	return released, err
}

// ListForSession returns the session's tickets, optionally filtered by status.
func (s *TicketService) ListForSession(ctx context.Context, sessionID uuid.UUID, status *model.TicketStatus) ([]model.Ticket, error) {
	if _, err := s.store.Sessions.GetByID(ctx, sessionID); err != nil {
		return nil, notFound(err, "session", sessionID)
	}
	tickets, err := s.store.Tickets.ListBySession(ctx, sessionID, status)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// bulkCreate materializes one AVAILABLE ticket per seat of the hall's
// current plan, copying each seat's category id and price.  It must run
// inside the caller's transaction.
func (s *TicketService) bulkCreate(ctx context.Context, session *model.Session) ([]model.Ticket, error) {
	seats, err := s.store.Seats.ListByHall(ctx, session.HallID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	if len(seats) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(seats))
	seen := make(map[uuid.UUID]bool)
	for _, st := range seats {
		if !seen[st.CategoryID] {
			seen[st.CategoryID] = true
			ids = append(ids, st.CategoryID)
		}
	}
	cats, err := s.store.Categories.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	prices := make(map[uuid.UUID]int, len(cats))
	for _, c := range cats {
		prices[c.ID] = c.PriceCents
	}

	tickets := make([]model.Ticket, len(seats))
	for i, st := range seats {
		price, ok := prices[st.CategoryID]
		if !ok {
			return nil, domain.NotFound("seat category %s not found", st.CategoryID)
		}
		tickets[i] = model.Ticket{
			ID:         uuid.New(),
			SessionID:  session.ID,
			SeatID:     st.ID,
			Row:        st.Row,
			Number:     st.Number,
			CategoryID: st.CategoryID,
			PriceCents: price,
			Status:     model.TicketAvailable,
		}
	}
	if err := s.store.Tickets.CreateBulk(ctx, tickets); err != nil {
		return nil, fmt.Errorf("insert tickets: %w", err)
	}
	return tickets, nil
}

// bulkDeleteForSession removes every ticket of a session.
func (s *TicketService) bulkDeleteForSession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	n, err := s.store.Tickets.DeleteBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete tickets: %w", err)
	}
	return n, nil
}
