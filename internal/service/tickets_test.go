package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

func TestReserve(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tk := f.ticketsOf(t, s.ID)[0]

	got, err := f.tickets.Reserve(f.ctx, tk.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, model.TicketReserved, got.Status)
	require.NotNil(t, got.ReservedBy)
	assert.Equal(t, f.alice.UserID, *got.ReservedBy)
	require.NotNil(t, got.ReservedUntil)
	assert.True(t, got.ReservedUntil.Equal(f.clock.Now().Add(ReservationHold)))

	_, err = f.tickets.Reserve(f.ctx, tk.ID, f.bob)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.tickets.Reserve(f.ctx, tk.ID, f.alice)
	require.ErrorIs(t, err, domain.ErrInvalidState, "reserving an own hold again is not allowed")

	_, err = f.tickets.Reserve(f.ctx, uuid.New(), f.alice)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReserveConcurrent(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tk := f.ticketsOf(t, s.ID)[0]

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uuid.UUID
		losers  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caller := domain.Caller{UserID: uuid.New()}
			_, err := f.tickets.Reserve(f.ctx, tk.ID, caller)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, caller.UserID)
			} else if domain.KindOf(err) == domain.ErrInvalidState {
				losers++
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, n-1, losers)
	got := f.ticket(t, tk.ID)
	require.NotNil(t, got.ReservedBy)
	assert.Equal(t, winners[0], *got.ReservedBy)
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)
	held := f.hold(t, f.alice, tickets[0], tickets[1])

	t.Run("other user", func(t *testing.T) {
		_, err := f.tickets.CancelReservation(f.ctx, held[0], f.bob)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("owner", func(t *testing.T) {
		got, err := f.tickets.CancelReservation(f.ctx, held[0], f.alice)
		require.NoError(t, err)
		assert.Equal(t, model.TicketAvailable, got.Status)
		assert.Nil(t, got.ReservedBy)
		assert.Nil(t, got.ReservedUntil)
		assert.Equal(t, model.TicketAvailable, f.ticket(t, held[0]).Status)
	})
	t.Run("not reserved", func(t *testing.T) {
		_, err := f.tickets.CancelReservation(f.ctx, held[0], f.alice)
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})
	t.Run("bound to a purchase", func(t *testing.T) {
		_, err := f.purchases.CreatePurchase(f.ctx, held[1:], f.alice)
		require.NoError(t, err)
		_, err = f.tickets.CancelReservation(f.ctx, held[1], f.alice)
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := f.tickets.CancelReservation(f.ctx, uuid.New(), f.alice)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestExpireReservations(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)

	early := f.hold(t, f.alice, tickets[0], tickets[1])
	bound := f.hold(t, f.bob, tickets[2])
	_, err := f.purchases.CreatePurchase(f.ctx, bound, f.bob)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)
	late := f.hold(t, f.alice, tickets[3])

	released, err := f.tickets.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, released, "nothing has expired yet")

	// Exactly at the end of the first holds.
	f.clock.Advance(ReservationHold - 5*time.Minute)
	released, err = f.tickets.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, released)
	for _, id := range early {
		got := f.ticket(t, id)
		assert.Equal(t, model.TicketAvailable, got.Status)
		assert.Nil(t, got.ReservedBy)
		assert.Nil(t, got.ReservedUntil)
	}
	assert.Equal(t, model.TicketReserved, f.ticket(t, late[0]).Status)

	f.clock.Advance(ReservationHold)
	released, err = f.tickets.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, model.TicketAvailable, f.ticket(t, late[0]).Status)

	got := f.ticket(t, bound[0])
	assert.Equal(t, model.TicketReserved, got.Status, "tickets bound to a purchase are never swept")
	assert.NotNil(t, got.PurchaseID)
}

// brokenTicketUpdates fails every Update of one ticket.
type brokenTicketUpdates struct {
	repository.TicketRepository
	broken uuid.UUID
}

func (r brokenTicketUpdates) Update(ctx context.Context, t *model.Ticket) error {
	if t.ID == r.broken {
		return errors.New("deadlock found when trying to get lock")
	}
	return r.TicketRepository.Update(ctx, t)
}

func TestExpireReservationsSkipsFailingTicket(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)
	held := f.hold(t, f.alice, tickets[0], tickets[1], tickets[2])

	store := *f.store
	store.Tickets = brokenTicketUpdates{TicketRepository: f.store.Tickets, broken: held[1]}
	core, logs := observer.New(zapcore.WarnLevel)
	sweeper := NewTicketService(&store, WithClock(f.clock.Now), WithLogger(zap.New(core)))

	f.clock.Advance(ReservationHold)
	released, err := sweeper.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, released, "the failing ticket is not counted")

	assert.Equal(t, model.TicketAvailable, f.ticket(t, held[0]).Status)
	assert.Equal(t, model.TicketReserved, f.ticket(t, held[1]).Status)
	assert.Equal(t, model.TicketAvailable, f.ticket(t, held[2]).Status)

	entries := logs.FilterMessage("release expired reservation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, held[1].String(), entries[0].ContextMap()["ticket_id"])

	// A later sweep with a healthy store picks it up.
	released, err = f.tickets.ExpireReservations(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, model.TicketAvailable, f.ticket(t, held[1]).Status)
}

func TestListForSession(t *testing.T) {
	f := newFixture(t)
	s := f.schedule(t, at(14, 0))
	tickets := f.ticketsOf(t, s.ID)
	f.hold(t, f.alice, tickets[1])

	reserved := model.TicketReserved
	got, err := f.tickets.ListForSession(f.ctx, s.ID, &reserved)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tickets[1].ID, got[0].ID)

	available := model.TicketAvailable
	got, err = f.tickets.ListForSession(f.ctx, s.ID, &available)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = f.tickets.ListForSession(f.ctx, uuid.New(), nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
