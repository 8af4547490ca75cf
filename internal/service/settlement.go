package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// notifyTimeout bounds one asynchronous notification attempt.
const notifyTimeout = 30 * time.Second

// Settlement is the result of one settlement attempt.
type Settlement struct {
	Payment        model.Payment
	PurchaseStatus model.PurchaseStatus
	Message        string
}

// SettlementService resolves payment outcomes for purchases.
type SettlementService struct {
	base
	decider  PaymentDecider
	notifier Notifier
	inflight sync.WaitGroup
}

// NewSettlementService creates a SettlementService.  notifier may be nil, in
// which case no notification is sent.
func NewSettlementService(store *repository.Store, decider PaymentDecider, notifier Notifier, opts ...Option) *SettlementService {
	return &SettlementService{base: newBase(store, opts), decider: decider, notifier: notifier}
}

// OutcomeMessage is the human readable text for a payment outcome.
func OutcomeMessage(st model.PaymentStatus) string {
	switch st {
	case model.PaymentSuccess:
		return "Payment processed successfully"
	case model.PaymentFailed:
		return "Payment failed"
	default:
		return "Payment is being processed"
	}
}

// Settle records one payment attempt for a PENDING or FAILED purchase.  On
// SUCCESS every bound ticket becomes SOLD; on FAILED or PENDING the tickets
// stay bound so the attempt can be retried.  The client is notified after
// the transaction commits.
func (s *SettlementService) Settle(ctx context.Context, purchaseID uuid.UUID) (*Settlement, error) {
	var (
		out      *Settlement
		clientID uuid.UUID
	)
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.store.Purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return notFound(err, "purchase", purchaseID)
		}
		if p.Status == model.PurchasePaid || p.Status == model.PurchaseCancelled {
			return domain.InvalidState("purchase %s is already %s", purchaseID, p.Status)
		}

		outcome, err := s.decider.Decide(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("decide payment: %w", err)
		}
		if _, ok := model.ParsePaymentStatus(string(outcome)); !ok {
			return fmt.Errorf("decide payment: unknown outcome %q", outcome)
		}

		now := s.now()
		payment := model.Payment{ID: uuid.New(), PurchaseID: purchaseID, Status: outcome, CreatedAt: now}
		if err := s.store.Payments.Create(ctx, &payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		status := outcome.PurchaseStatus()
		if err := s.store.Purchases.UpdateStatus(ctx, purchaseID, status, now); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		if outcome == model.PaymentSuccess {
			tickets, err := s.store.Tickets.ListByPurchase(ctx, purchaseID)
			if err != nil {
				return fmt.Errorf("lock purchase tickets: %w", err)
			}
			for i := range tickets {
				tickets[i].Status = model.TicketSold
				tickets[i].ReservedUntil = nil
				if err := s.store.Tickets.Update(ctx, &tickets[i]); err != nil {
					return fmt.Errorf("sell ticket %s: %w", tickets[i].ID, err)
				}
			}
		}

		clientID = p.ClientID
		out = &Settlement{Payment: payment, PurchaseStatus: status, Message: OutcomeMessage(outcome)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase settled",
		zap.Stringer("purchase_id", purchaseID),
		zap.Stringer("payment_id", out.Payment.ID),
		zap.String("outcome", string(out.Payment.Status)))
	s.dispatch(clientID, purchaseID, out.Message)
	return out, nil
}

// dispatch sends the outcome notification in the background.  Failures are
// logged only.
func (s *SettlementService) dispatch(clientID, purchaseID uuid.UUID, message string) {
	if s.notifier == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user, err := s.store.Users.GetByID(ctx, clientID)
		if err != nil {
			s.log.Warn("payment notification skipped: client lookup failed",
				zap.Stringer("client_id", clientID), zap.Error(err))
			return
		}
		body := fmt.Sprintf("Your payment for purchase ID %s is %s.", purchaseID, message)
		if err := s.notifier.Send(ctx, user.Email, "Payment Status", body); err != nil {
			s.log.Warn("payment notification failed",
				zap.Stringer("purchase_id", purchaseID), zap.String("to", user.Email), zap.Error(err))
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (s *SettlementService) Wait() {
	s.inflight.Wait()
}

// GetPaymentStatus returns a payment whose purchase the caller may see.
func (s *SettlementService) GetPaymentStatus(ctx context.Context, paymentID uuid.UUID, caller domain.Caller) (*model.Payment, error) {
	payment, err := s.store.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFound(err, "payment", paymentID)
	}
	p, err := s.store.Purchases.GetByID(ctx, payment.PurchaseID)
	if err != nil {
		return nil, notFound(err, "purchase", payment.PurchaseID)
	}
	if !caller.CanAccess(p.ClientID) {
		return nil, domain.Forbidden("payment %s belongs to another client", paymentID)
	}
	return payment, nil
}
