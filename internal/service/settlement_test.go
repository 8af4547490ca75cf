package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// pendingPurchase returns a PENDING purchase of alice holding one ticket.
func pendingPurchase(t *testing.T, f *fixture) (*PurchaseDetails, uuid.UUID) {
	t.Helper()
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, f.alice, f.ticketsOf(t, s.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)
	return d, held[0]
}

func TestBookingFlow(t *testing.T) {
	f := newFixture(t)

	s1, err := f.scheduler.ScheduleSession(f.ctx, f.film.ID, f.hall.ID, at(14, 0))
	require.NoError(t, err)
	_, err = f.scheduler.ScheduleSession(f.ctx, f.film.ID, f.hall.ID, at(15, 30))
	require.ErrorIs(t, err, domain.ErrSchedulingConflict)

	t1 := f.ticketsOf(t, s1.ID)[0]
	_, err = f.tickets.Reserve(f.ctx, t1.ID, f.alice)
	require.NoError(t, err)
	_, err = f.tickets.Reserve(f.ctx, t1.ID, f.bob)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	d, err := f.purchases.CreatePurchase(f.ctx, []uuid.UUID{t1.ID}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, 1000, d.Purchase.TotalCents)
	assert.Equal(t, model.PurchasePending, d.Purchase.Status)

	settlement := f.settlement(model.PaymentSuccess, nil)
	res, err := settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePaid, res.PurchaseStatus)
	assert.Equal(t, model.TicketSold, f.ticket(t, t1.ID).Status)
}

func TestSettleOutcomes(t *testing.T) {
	tests := []struct {
		outcome  model.PaymentStatus
		purchase model.PurchaseStatus
		ticket   model.TicketStatus
		message  string
	}{
		{model.PaymentSuccess, model.PurchasePaid, model.TicketSold, "Payment processed successfully"},
		{model.PaymentFailed, model.PurchaseFailed, model.TicketReserved, "Payment failed"},
		{model.PaymentPending, model.PurchasePending, model.TicketReserved, "Payment is being processed"},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			f := newFixture(t)
			d, ticketID := pendingPurchase(t, f)

			notifier := &mockNotifier{}
			body := fmt.Sprintf("Your payment for purchase ID %s is %s.", d.Purchase.ID, tt.message)
			notifier.On("Send", mock.Anything, f.alice.Email, "Payment Status", body).Return(nil).Once()

			settlement := f.settlement(tt.outcome, notifier)
			res, err := settlement.Settle(f.ctx, d.Purchase.ID)
			require.NoError(t, err)
			settlement.Wait()

			assert.Equal(t, tt.outcome, res.Payment.Status)
			assert.Equal(t, d.Purchase.ID, res.Payment.PurchaseID)
			assert.Equal(t, tt.purchase, res.PurchaseStatus)
			assert.Equal(t, tt.message, res.Message)

			p, err := f.store.Purchases.GetByID(f.ctx, d.Purchase.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.purchase, p.Status)

			tk := f.ticket(t, ticketID)
			assert.Equal(t, tt.ticket, tk.Status)
			require.NotNil(t, tk.PurchaseID, "tickets stay bound whatever the outcome")
			if tt.outcome == model.PaymentSuccess {
				assert.Nil(t, tk.ReservedUntil)
			}
			notifier.AssertExpectations(t)
		})
	}
}

func TestSettleNotificationFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	d, _ := pendingPurchase(t, f)

	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, f.alice.Email, "Payment Status", mock.Anything).
		Return(errors.New("smtp down")).Once()

	settlement := f.settlement(model.PaymentSuccess, notifier)
	res, err := settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	settlement.Wait()
	assert.Equal(t, model.PurchasePaid, res.PurchaseStatus)
	notifier.AssertExpectations(t)
}

func TestSettleUnknownClientSkipsNotification(t *testing.T) {
	f := newFixture(t)
	stranger := domain.Caller{UserID: uuid.New()}
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, stranger, f.ticketsOf(t, s.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, stranger)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	settlement := f.settlement(model.PaymentSuccess, notifier)
	_, err = settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	settlement.Wait()
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleNotifiesEmailFromCallerClaims(t *testing.T) {
	f := newFixture(t)
	carol := domain.Caller{UserID: uuid.New(), Email: "carol@example.com"}
	_, err := f.store.Users.GetByID(f.ctx, carol.UserID)
	require.Error(t, err, "carol is not provisioned anywhere")

	s := f.schedule(t, at(14, 0))
	held := f.hold(t, carol, f.ticketsOf(t, s.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, carol)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	body := fmt.Sprintf("Your payment for purchase ID %s is Payment processed successfully.", d.Purchase.ID)
	notifier.On("Send", mock.Anything, "carol@example.com", "Payment Status", body).Return(nil).Once()

	settlement := f.settlement(model.PaymentSuccess, notifier)
	_, err = settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	settlement.Wait()
	notifier.AssertExpectations(t)
}

func TestSettleUsesLatestCallerEmail(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)

	first := f.hold(t, f.alice, tickets[0])
	_, err := f.purchases.CreatePurchase(f.ctx, first, f.alice)
	require.NoError(t, err)

	moved := f.alice
	moved.Email = "alice@new.example.com"
	second := f.hold(t, moved, tickets[1])
	d, err := f.purchases.CreatePurchase(f.ctx, second, moved)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	notifier.On("Send", mock.Anything, "alice@new.example.com", "Payment Status", mock.Anything).Return(nil).Once()
	settlement := f.settlement(model.PaymentFailed, notifier)
	_, err = settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	settlement.Wait()
	notifier.AssertExpectations(t)
}

func TestSettleRejectsFinalPurchases(t *testing.T) {
	f := newFixture(t)
	d, _ := pendingPurchase(t, f)
	settlement := f.settlement(model.PaymentSuccess, nil)

	_, err := settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	_, err = settlement.Settle(f.ctx, d.Purchase.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	other := newFixture(t)
	cancelled, _ := pendingPurchase(t, other)
	_, err = other.purchases.CancelPurchase(other.ctx, cancelled.Purchase.ID, other.alice)
	require.NoError(t, err)
	_, err = other.settlement(model.PaymentSuccess, nil).Settle(other.ctx, cancelled.Purchase.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = settlement.Settle(f.ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettleRetriesPendingAndFailed(t *testing.T) {
	f := newFixture(t)
	d, ticketID := pendingPurchase(t, f)

	for _, outcome := range []model.PaymentStatus{model.PaymentPending, model.PaymentFailed, model.PaymentSuccess} {
		_, err := f.settlement(outcome, nil).Settle(f.ctx, d.Purchase.ID)
		require.NoError(t, err, outcome)
	}
	assert.Equal(t, model.TicketSold, f.ticket(t, ticketID).Status)

	payments, err := f.store.Payments.ListByPurchase(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}

type failingDecider struct{}

func (failingDecider) Decide(context.Context, uuid.UUID) (model.PaymentStatus, error) {
	return "", errors.New("provider unavailable")
}

func TestSettleDeciderErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	d, _ := pendingPurchase(t, f)

	settlement := NewSettlementService(f.store, failingDecider{}, nil, f.opts...)
	_, err := settlement.Settle(f.ctx, d.Purchase.ID)
	require.Error(t, err)
	assert.Nil(t, domain.KindOf(err))

	payments, err := f.store.Payments.ListByPurchase(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestGetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	d, _ := pendingPurchase(t, f)
	settlement := f.settlement(model.PaymentFailed, nil)
	res, err := settlement.Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)

	got, err := settlement.GetPaymentStatus(f.ctx, res.Payment.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, got.Status)

	_, err = settlement.GetPaymentStatus(f.ctx, res.Payment.ID, f.bob)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = settlement.GetPaymentStatus(f.ctx, res.Payment.ID, f.admin)
	require.NoError(t, err)

	_, err = settlement.GetPaymentStatus(f.ctx, uuid.New(), f.alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewDecider(t *testing.T) {
	d, err := NewDecider("")
	require.NoError(t, err)
	assert.IsType(t, RandomDecider{}, d)

	d, err = NewDecider("FAILED")
	require.NoError(t, err)
	assert.Equal(t, FixedDecider{Outcome: model.PaymentFailed}, d)

	_, err = NewDecider("REFUNDED")
	require.Error(t, err)

	for i := 0; i < 50; i++ {
		st, err := RandomDecider{}.Decide(context.Background(), uuid.New())
		require.NoError(t, err)
		_, ok := model.ParsePaymentStatus(string(st))
		assert.True(t, ok)
	}
}
