package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// PurchaseDetails is a purchase together with the ids of its bound tickets
// and its payment history, oldest attempt first.
type PurchaseDetails struct {
	Purchase  model.Purchase
	TicketIDs []uuid.UUID
	Payments  []model.Payment
}

// PurchaseService binds held tickets into purchases.
type PurchaseService struct {
	base
}

// NewPurchaseService creates a PurchaseService.
func NewPurchaseService(store *repository.Store, opts ...Option) *PurchaseService {
	return &PurchaseService{base: newBase(store, opts)}
}

// CreatePurchase binds the caller's held tickets into a new PENDING
// purchase.  Either every ticket is bound or none is.  The caller's email is
// recorded so settlement can notify them.
func (s *PurchaseService) CreatePurchase(ctx context.Context, ticketIDs []uuid.UUID, caller domain.Caller) (*PurchaseDetails, error) {
	ids := dedupeIDs(ticketIDs)
	if len(ids) == 0 {
		return nil, domain.Validation("a purchase needs at least one ticket")
	}

	var out *PurchaseDetails
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.store.Tickets.ListForUpdate(ctx, ids)
		if err != nil {
			return fmt.Errorf("lock tickets: %w", err)
		}
		byID := make(map[uuid.UUID]model.Ticket, len(locked))
		for _, t := range locked {
			byID[t.ID] = t
		}

		total := 0
		for _, id := range ids {
			t, ok := byID[id]
			if !ok {
				return domain.NotFound("ticket %s not found", id)
			}
			if !t.HeldBy(caller.UserID) {
				return domain.InvalidState("ticket %s is not held by the caller", id)
			}
			total += t.PriceCents
		}

		now := s.now()
		p := &model.Purchase{
			ID:         uuid.New(),
			ClientID:   caller.UserID,
			Status:     model.PurchasePending,
			TotalCents: total,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.store.Purchases.Create(ctx, p); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		if caller.Email != "" {
			if err := s.store.Users.Upsert(ctx, &model.User{ID: caller.UserID, Email: caller.Email}); err != nil {
				return fmt.Errorf("record client: %w", err)
			}
		}
		for _, id := range ids {
			t := byID[id]
			pid := p.ID
			t.PurchaseID = &pid
			if err := s.store.Tickets.Update(ctx, &t); err != nil {
				return fmt.Errorf("bind ticket %s: %w", id, err)
			}
		}
		out = &PurchaseDetails{Purchase: *p, TicketIDs: ids}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase created",
		zap.Stringer("purchase_id", out.Purchase.ID),
		zap.Stringer("client_id", caller.UserID),
		zap.Int("tickets", len(ids)),
		zap.Int("total_cents", out.Purchase.TotalCents))
	return out, nil
}

// CancelPurchase releases every bound ticket and marks the purchase
// CANCELLED.  Only PENDING and PAID purchases can be cancelled.
func (s *PurchaseService) CancelPurchase(ctx context.Context, purchaseID uuid.UUID, caller domain.Caller) (*model.Purchase, error) {
	var out *model.Purchase
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.store.Purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return notFound(err, "purchase", purchaseID)
		}
		if !caller.CanAccess(p.ClientID) {
			return domain.Forbidden("purchase %s belongs to another client", purchaseID)
		}
		if p.Status != model.PurchasePending && p.Status != model.PurchasePaid {
			return domain.InvalidState("purchase %s is %s and cannot be cancelled", purchaseID, p.Status)
		}
		tickets, err := s.store.Tickets.ListByPurchase(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("lock purchase tickets: %w", err)
		}
		for i := range tickets {
			tickets[i].Release()
			if err := s.store.Tickets.Update(ctx, &tickets[i]); err != nil {
				return fmt.Errorf("release ticket %s: %w", tickets[i].ID, err)
			}
		}
		now := s.now()
		if err := s.store.Purchases.UpdateStatus(ctx, purchaseID, model.PurchaseCancelled, now); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		p.Status = model.PurchaseCancelled
		p.UpdatedAt = now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase cancelled", zap.Stringer("purchase_id", purchaseID), zap.Stringer("by", caller.UserID))
	return out, nil
}

// GetPurchase returns a purchase visible to the caller.
func (s *PurchaseService) GetPurchase(ctx context.Context, purchaseID uuid.UUID, caller domain.Caller) (*PurchaseDetails, error) {
	p, err := s.store.Purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, notFound(err, "purchase", purchaseID)
	}
	if !caller.CanAccess(p.ClientID) {
		return nil, domain.Forbidden("purchase %s belongs to another client", purchaseID)
	}
	details := &PurchaseDetails{Purchase: *p}
	err = s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		tickets, err := s.store.Tickets.ListByPurchase(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("list purchase tickets: %w", err)
		}
		for _, t := range tickets {
			details.TicketIDs = append(details.TicketIDs, t.ID)
		}
		details.Payments, err = s.store.Payments.ListByPurchase(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListPurchases returns the caller's purchases, newest first.
func (s *PurchaseService) ListPurchases(ctx context.Context, caller domain.Caller) ([]model.Purchase, error) {
	out, err := s.store.Purchases.ListByClient(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}

// dedupeIDs collapses repeated ids and returns them in ascending order,
// the order in which their rows are locked.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
