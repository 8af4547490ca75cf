package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// day is the calendar day every fixture session is scheduled on.
var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	ctx   context.Context
	mem   *repository.MemoryStore
	store *repository.Store
	clock *testClock
	opts  []Option

	catalog   *CatalogService
	plans     *SeatPlanService
	tickets   *TicketService
	scheduler *SchedulerService
	purchases *PurchaseService

	hall     *model.Hall
	category *model.SeatCategory
	film     *model.Film

	alice domain.Caller
	bob   domain.Caller
	admin domain.Caller
}

// newFixture builds a 2x2 hall priced at 1000 cents per seat and a 100
// minute film on an in-memory store.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := repository.NewMemoryStore()
	f := &fixture{
		ctx:   context.Background(),
		mem:   mem,
		store: mem.Store(),
		clock: &testClock{now: at(9, 0)},
		alice: domain.Caller{UserID: uuid.New(), Email: "alice@example.com"},
		bob:   domain.Caller{UserID: uuid.New(), Email: "bob@example.com"},
		admin: domain.Caller{UserID: uuid.New(), Email: "admin@example.com", Admin: true},
	}
	f.opts = []Option{WithClock(f.clock.Now), WithLogger(zaptest.NewLogger(t))}
	f.catalog = NewCatalogService(f.store, f.opts...)
	f.plans = NewSeatPlanService(f.store, f.opts...)
	f.tickets = NewTicketService(f.store, f.opts...)
	f.scheduler = NewSchedulerService(f.store, f.tickets, f.opts...)
	f.purchases = NewPurchaseService(f.store, f.opts...)

	var err error
	f.hall, err = f.catalog.CreateHall(f.ctx, "Hall 1", 2)
	require.NoError(t, err)
	f.category, err = f.catalog.CreateCategory(f.ctx, "Standard", 1000)
	require.NoError(t, err)
	_, err = f.plans.UpdatePlan(f.ctx, f.hall.ID, 2, grid(2, 2, f.category.ID))
	require.NoError(t, err)
	f.film, err = f.catalog.CreateFilm(f.ctx, "The Long Take", 100, model.AgeRatingTwelvePlus)
	require.NoError(t, err)
	return f
}

func grid(rows, perRow int, categoryID uuid.UUID) []SeatSpec {
	var out []SeatSpec
	for r := 1; r <= rows; r++ {
		for n := 1; n <= perRow; n++ {
			out = append(out, SeatSpec{Row: r, Number: n, CategoryID: categoryID})
		}
	}
	return out
}

func (f *fixture) settlement(outcome model.PaymentStatus, notifier Notifier) *SettlementService {
	return NewSettlementService(f.store, FixedDecider{Outcome: outcome}, notifier, f.opts...)
}

func (f *fixture) schedule(t *testing.T, start time.Time) *model.Session {
	t.Helper()
	s, err := f.scheduler.ScheduleSession(f.ctx, f.film.ID, f.hall.ID, start)
	require.NoError(t, err)
	return s
}

func (f *fixture) ticketsOf(t *testing.T, sessionID uuid.UUID) []model.Ticket {
	t.Helper()
	out, err := f.tickets.ListForSession(f.ctx, sessionID, nil)
	require.NoError(t, err)
	return out
}

func (f *fixture) ticket(t *testing.T, id uuid.UUID) *model.Ticket {
	t.Helper()
	tk, err := f.store.Tickets.GetByID(f.ctx, id)
	require.NoError(t, err)
	return tk
}

// hold reserves the given tickets for caller.
func (f *fixture) hold(t *testing.T, caller domain.Caller, tickets ...model.Ticket) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, len(tickets))
	for i, tk := range tickets {
		_, err := f.tickets.Reserve(f.ctx, tk.ID, caller)
		require.NoError(t, err)
		ids[i] = tk.ID
	}
	return ids
}
