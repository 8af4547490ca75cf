package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

func TestCreatePurchase(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)
	held := f.hold(t, f.alice, tickets[0], tickets[1])

	// Repeated ids are collapsed.
	d, err := f.purchases.CreatePurchase(f.ctx, []uuid.UUID{held[1], held[0], held[1]}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePending, d.Purchase.Status)
	assert.Equal(t, f.alice.UserID, d.Purchase.ClientID)
	assert.Equal(t, 2000, d.Purchase.TotalCents)
	assert.ElementsMatch(t, held, d.TicketIDs)

	for _, id := range held {
		got := f.ticket(t, id)
		assert.Equal(t, model.TicketReserved, got.Status)
		require.NotNil(t, got.PurchaseID)
		assert.Equal(t, d.Purchase.ID, *got.PurchaseID)
	}

	_, err = f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.ErrorIs(t, err, domain.ErrInvalidState, "bound tickets cannot join a second purchase")
}

func TestCreatePurchaseValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.purchases.CreatePurchase(f.ctx, nil, f.alice)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.purchases.CreatePurchase(f.ctx, []uuid.UUID{uuid.New()}, f.alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePurchaseIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)
	mine := f.hold(t, f.alice, tickets[0])
	theirs := f.hold(t, f.bob, tickets[1])

	tests := map[string][]uuid.UUID{
		"unreserved ticket":   {mine[0], tickets[2].ID},
		"someone else's hold": {mine[0], theirs[0]},
		"missing ticket":      {mine[0], uuid.New()},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.purchases.CreatePurchase(f.ctx, ids, f.alice)
			require.Error(t, err)

			got := f.ticket(t, mine[0])
			assert.Nil(t, got.PurchaseID, "the valid ticket stays unbound")
			assert.Equal(t, model.TicketReserved, got.Status)
		})
	}

	list, err := f.purchases.ListPurchases(f.ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreatePurchaseExpiredHoldBeforeSweep(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, f.alice, f.ticketsOf(t, s.ID)[0])

	f.clock.Advance(ReservationHold + time.Minute)
	_, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)

	released, err := f.tickets.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, released)
}

func TestPurchaseUsesPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	before := f.schedule(t, at(10, 0))

	updated, err := f.catalog.UpdateCategoryPrice(f.ctx, f.category.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1500, updated.PriceCents)

	after := f.schedule(t, at(14, 0))
	for _, tk := range f.ticketsOf(t, before.ID) {
		assert.Equal(t, 1000, tk.PriceCents)
	}
	for _, tk := range f.ticketsOf(t, after.ID) {
		assert.Equal(t, 1500, tk.PriceCents)
	}

	held := f.hold(t, f.alice, f.ticketsOf(t, before.ID)[0], f.ticketsOf(t, after.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)
	assert.Equal(t, 2500, d.Purchase.TotalCents)
}

func TestCancelPurchase(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, f.alice, f.ticketsOf(t, s.ID)[:2]...)
	d, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)

	_, err = f.purchases.CancelPurchase(f.ctx, d.Purchase.ID, f.bob)
	require.ErrorIs(t, err, domain.ErrForbidden)

	p, err := f.purchases.CancelPurchase(f.ctx, d.Purchase.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseCancelled, p.Status)
	for _, id := range held {
		got := f.ticket(t, id)
		assert.Equal(t, model.TicketAvailable, got.Status)
		assert.Nil(t, got.PurchaseID)
		assert.Nil(t, got.ReservedBy)
		assert.Nil(t, got.ReservedUntil)
	}

	_, err = f.purchases.CancelPurchase(f.ctx, d.Purchase.ID, f.alice)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.purchases.CancelPurchase(f.ctx, uuid.New(), f.alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelPaidPurchaseByAdmin(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, f.alice, f.ticketsOf(t, s.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)
	_, err = f.settlement(model.PaymentSuccess, nil).Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)
	require.Equal(t, model.TicketSold, f.ticket(t, held[0]).Status)

	p, err := f.purchases.CancelPurchase(f.ctx, d.Purchase.ID, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseCancelled, p.Status)
	assert.Equal(t, model.TicketAvailable, f.ticket(t, held[0]).Status)
}

func TestCancelFailedPurchase(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	held := f.hold(t, f.alice, f.ticketsOf(t, s.ID)[0])
	d, err := f.purchases.CreatePurchase(f.ctx, held, f.alice)
	require.NoError(t, err)
	_, err = f.settlement(model.PaymentFailed, nil).Settle(f.ctx, d.Purchase.ID)
	require.NoError(t, err)

	_, err = f.purchases.CancelPurchase(f.ctx, d.Purchase.ID, f.alice)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetAndListPurchases(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)

	first, err := f.purchases.CreatePurchase(f.ctx, f.hold(t, f.alice, tickets[0]), f.alice)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.purchases.CreatePurchase(f.ctx, f.hold(t, f.alice, tickets[1]), f.alice)
	require.NoError(t, err)
	_, err = f.purchases.CreatePurchase(f.ctx, f.hold(t, f.bob, tickets[2]), f.bob)
	require.NoError(t, err)

	list, err := f.purchases.ListPurchases(f.ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.Purchase.ID, list[0].ID)
	assert.Equal(t, first.Purchase.ID, list[1].ID)

	f.clock.Advance(time.Minute)
	_, err = f.settlement(model.PaymentFailed, nil).Settle(f.ctx, first.Purchase.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.settlement(model.PaymentSuccess, nil).Settle(f.ctx, first.Purchase.ID)
	require.NoError(t, err)

	d, err := f.purchases.GetPurchase(f.ctx, first.Purchase.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePaid, d.Purchase.Status)
	assert.Equal(t, []uuid.UUID{tickets[0].ID}, d.TicketIDs)
	require.Len(t, d.Payments, 2)
	assert.Equal(t, model.PaymentFailed, d.Payments[0].Status)
	assert.Equal(t, model.PaymentSuccess, d.Payments[1].Status)

	_, err = f.purchases.GetPurchase(f.ctx, first.Purchase.ID, f.bob)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.purchases.GetPurchase(f.ctx, first.Purchase.ID, f.admin)
	require.NoError(t, err)
	_, err = f.purchases.GetPurchase(f.ctx, uuid.New(), f.alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
