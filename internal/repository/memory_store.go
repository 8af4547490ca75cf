package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

// MemoryStore keeps every entity in process memory.  A single mutex guards
// all maps; WithTx holds it for the whole unit of work, which gives the same
// serialization the MySQL row locks give, only coarser.  Writes made inside
// a transaction are recorded in an undo log and reverted when fn fails.
type MemoryStore struct {
	mu sync.Mutex

	halls      map[uuid.UUID]model.Hall
	seats      map[uuid.UUID]model.Seat
	categories map[uuid.UUID]model.SeatCategory
	films      map[uuid.UUID]model.Film
	sessions   map[uuid.UUID]model.Session
	tickets    map[uuid.UUID]model.Ticket
	purchases  map[uuid.UUID]model.Purchase
	payments   map[uuid.UUID]model.Payment
	users      map[uuid.UUID]model.User
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		halls:      make(map[uuid.UUID]model.Hall),
		seats:      make(map[uuid.UUID]model.Seat),
		categories: make(map[uuid.UUID]model.SeatCategory),
		films:      make(map[uuid.UUID]model.Film),
		sessions:   make(map[uuid.UUID]model.Session),
		tickets:    make(map[uuid.UUID]model.Ticket),
		purchases:  make(map[uuid.UUID]model.Purchase),
		payments:   make(map[uuid.UUID]model.Payment),
		users:      make(map[uuid.UUID]model.User),
	}
}

// Store exposes the memory store through the repository interfaces.
func (s *MemoryStore) Store() *Store {
	return &Store{
		Tx:         s,
		Halls:      memHalls{s},
		Seats:      memSeats{s},
		Categories: memCategories{s},
		Films:      memFilms{s},
		Sessions:   memSessions{s},
		Tickets:    memTickets{s},
		Purchases:  memPurchases{s},
		Payments:   memPayments{s},
		Users:      memUsers{s},
	}
}

type memTx struct {
	store *MemoryStore
	undo  []func()
}

type memTxKey struct{}

// WithTx runs fn while holding the store lock.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok && tx.store == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

// run executes op under the store lock unless ctx already carries one of
// this store's transactions.
func (s *MemoryStore) run(ctx context.Context, op func(tx *memTx) error) error {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok && tx.store == s {
		return op(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(&memTx{store: s})
}

// put stores v under k and logs how to restore the previous value.
func put[V any](tx *memTx, m map[uuid.UUID]V, k uuid.UUID, v V) {
	prev, existed := m[k]
	tx.undo = append(tx.undo, func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

// remove deletes k and logs how to restore it.
func remove[V any](tx *memTx, m map[uuid.UUID]V, k uuid.UUID) {
	prev, existed := m[k]
	if !existed {
		return
	}
	tx.undo = append(tx.undo, func() { m[k] = prev })
	delete(m, k)
}

func cloneTicket(t model.Ticket) model.Ticket {
	if t.ReservedBy != nil {
		v := *t.ReservedBy
		t.ReservedBy = &v
	}
	if t.ReservedUntil != nil {
		v := *t.ReservedUntil
		t.ReservedUntil = &v
	}
	if t.PurchaseID != nil {
		v := *t.PurchaseID
		t.PurchaseID = &v
	}
	return t
}

func idLess(a, b uuid.UUID) bool { return a.String() < b.String() }

// halls

type memHalls struct{ s *MemoryStore }

func (r memHalls) Create(ctx context.Context, h *model.Hall) error {
	return r.s.run(ctx, func(tx *memTx) error {
		if _, ok := r.s.halls[h.ID]; ok {
			return ErrDuplicate
		}
		put(tx, r.s.halls, h.ID, *h)
		return nil
	})
}

func (r memHalls) GetByID(ctx context.Context, id uuid.UUID) (*model.Hall, error) {
	var out *model.Hall
	err := r.s.run(ctx, func(*memTx) error {
		h, ok := r.s.halls[id]
		if !ok {
			return ErrNotFound
		}
		out = &h
		return nil
	})
	return out, err
}

func (r memHalls) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Hall, error) {
	return r.GetByID(ctx, id)
}

func (r memHalls) UpdateRows(ctx context.Context, id uuid.UUID, rows int) error {
	return r.s.run(ctx, func(tx *memTx) error {
		h, ok := r.s.halls[id]
		if !ok {
			return ErrNotFound
		}
		h.Rows = rows
		h.UpdatedAt = time.Now().UTC()
		put(tx, r.s.halls, id, h)
		return nil
	})
}

// seats

type memSeats struct{ s *MemoryStore }

func (r memSeats) ListByHall(ctx context.Context, hallID uuid.UUID) ([]model.Seat, error) {
	var out []model.Seat
	err := r.s.run(ctx, func(*memTx) error {
		for _, seat := range r.s.seats {
			if seat.HallID == hallID {
				out = append(out, seat)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Number < out[j].Number
	})
	return out, err
}

func (r memSeats) DeleteByHall(ctx context.Context, hallID uuid.UUID) error {
	return r.s.run(ctx, func(tx *memTx) error {
		for id, seat := range r.s.seats {
			if seat.HallID == hallID {
				remove(tx, r.s.seats, id)
			}
		}
		return nil
	})
}

func (r memSeats) CreateBulk(ctx context.Context, seats []model.Seat) error {
	return r.s.run(ctx, func(tx *memTx) error {
		type pos struct {
			hall        uuid.UUID
			row, number int
		}
		taken := make(map[pos]bool)
		for _, seat := range r.s.seats {
			taken[pos{seat.HallID, seat.Row, seat.Number}] = true
		}
		for _, seat := range seats {
			p := pos{seat.HallID, seat.Row, seat.Number}
			if taken[p] {
				return ErrDuplicate
			}
			taken[p] = true
		}
		for _, seat := range seats {
			put(tx, r.s.seats, seat.ID, seat)
		}
		return nil
	})
}

// categories

type memCategories struct{ s *MemoryStore }

func (r memCategories) Create(ctx context.Context, c *model.SeatCategory) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.categories, c.ID, *c)
		return nil
	})
}

func (r memCategories) GetByID(ctx context.Context, id uuid.UUID) (*model.SeatCategory, error) {
	var out *model.SeatCategory
	err := r.s.run(ctx, func(*memTx) error {
		c, ok := r.s.categories[id]
		if !ok {
			return ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r memCategories) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SeatCategory, error) {
	var out []model.SeatCategory
	err := r.s.run(ctx, func(*memTx) error {
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if c, ok := r.s.categories[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (r memCategories) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int) error {
	return r.s.run(ctx, func(tx *memTx) error {
		c, ok := r.s.categories[id]
		if !ok {
			return ErrNotFound
		}
		c.PriceCents = priceCents
		put(tx, r.s.categories, id, c)
		return nil
	})
}

// films

type memFilms struct{ s *MemoryStore }

func (r memFilms) Create(ctx context.Context, f *model.Film) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.films, f.ID, *f)
		return nil
	})
}

func (r memFilms) GetByID(ctx context.Context, id uuid.UUID) (*model.Film, error) {
	var out *model.Film
	err := r.s.run(ctx, func(*memTx) error {
		f, ok := r.s.films[id]
		if !ok {
			return ErrNotFound
		}
		out = &f
		return nil
	})
	return out, err
}

// sessions

type memSessions struct{ s *MemoryStore }

func (r memSessions) Create(ctx context.Context, sess *model.Session) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.sessions, sess.ID, *sess)
		return nil
	})
}

func (r memSessions) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	var out *model.Session
	err := r.s.run(ctx, func(*memTx) error {
		sess, ok := r.s.sessions[id]
		if !ok {
			return ErrNotFound
		}
		out = &sess
		return nil
	})
	return out, err
}

func (r memSessions) Update(ctx context.Context, sess *model.Session) error {
	return r.s.run(ctx, func(tx *memTx) error {
		if _, ok := r.s.sessions[sess.ID]; !ok {
			return ErrNotFound
		}
		put(tx, r.s.sessions, sess.ID, *sess)
		return nil
	})
}

func (r memSessions) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.run(ctx, func(tx *memTx) error {
		if _, ok := r.s.sessions[id]; !ok {
			return ErrNotFound
		}
		remove(tx, r.s.sessions, id)
		return nil
	})
}

func (r memSessions) ListSlots(ctx context.Context, hallID uuid.UUID, from, to time.Time) ([]model.Slot, error) {
	var out []model.Slot
	err := r.s.run(ctx, func(*memTx) error {
		for _, sess := range r.s.sessions {
			if sess.HallID != hallID {
				continue
			}
			f, ok := r.s.films[sess.FilmID]
			if !ok {
				continue
			}
			end := sess.StartAt.Add(f.Duration())
			if sess.StartAt.After(to) || end.Before(from) {
				continue
			}
			out = append(out, model.Slot{SessionID: sess.ID, Start: sess.StartAt, End: end})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, err
}

// tickets

type memTickets struct{ s *MemoryStore }

func (r memTickets) CreateBulk(ctx context.Context, tickets []model.Ticket) error {
	return r.s.run(ctx, func(tx *memTx) error {
		for _, t := range tickets {
			if _, ok := r.s.tickets[t.ID]; ok {
				return ErrDuplicate
			}
		}
		for _, t := range tickets {
			put(tx, r.s.tickets, t.ID, cloneTicket(t))
		}
		return nil
	})
}

func (r memTickets) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var out *model.Ticket
	err := r.s.run(ctx, func(*memTx) error {
		t, ok := r.s.tickets[id]
		if !ok {
			return ErrNotFound
		}
		c := cloneTicket(t)
		out = &c
		return nil
	})
	return out, err
}

func (r memTickets) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r memTickets) ListForUpdate(ctx context.Context, ids []uuid.UUID) ([]model.Ticket, error) {
	var out []model.Ticket
	err := r.s.run(ctx, func(*memTx) error {
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if t, ok := r.s.tickets[id]; ok && !seen[id] {
				seen[id] = true
				out = append(out, cloneTicket(t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, err
}

func (r memTickets) Update(ctx context.Context, t *model.Ticket) error {
	return r.s.run(ctx, func(tx *memTx) error {
		if _, ok := r.s.tickets[t.ID]; !ok {
			return ErrNotFound
		}
		put(tx, r.s.tickets, t.ID, cloneTicket(*t))
		return nil
	})
}

func (r memTickets) ListBySession(ctx context.Context, sessionID uuid.UUID, status *model.TicketStatus) ([]model.Ticket, error) {
	var out []model.Ticket
	err := r.s.run(ctx, func(*memTx) error {
		for _, t := range r.s.tickets {
			if t.SessionID != sessionID || (status != nil && t.Status != *status) {
				continue
			}
			out = append(out, cloneTicket(t))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Number < out[j].Number
	})
	return out, err
}

func (r memTickets) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Ticket, error) {
	var out []model.Ticket
	err := r.s.run(ctx, func(*memTx) error {
		for _, t := range r.s.tickets {
			if t.PurchaseID != nil && *t.PurchaseID == purchaseID {
				out = append(out, cloneTicket(t))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, err
}

func (r memTickets) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.run(ctx, func(tx *memTx) error {
		for id, t := range r.s.tickets {
			if t.SessionID == sessionID {
				remove(tx, r.s.tickets, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r memTickets) ListExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var expired []model.Ticket
	err := r.s.run(ctx, func(*memTx) error {
		for _, t := range r.s.tickets {
			if t.Status == model.TicketReserved && t.PurchaseID == nil &&
				t.ReservedUntil != nil && !t.ReservedUntil.After(now) {
				expired = append(expired, t)
			}
		}
		return nil
	})
	sort.Slice(expired, func(i, j int) bool { return expired[i].ReservedUntil.Before(*expired[j].ReservedUntil) })
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	ids := make([]uuid.UUID, len(expired))
	for i, t := range expired {
		ids[i] = t.ID
	}
	return ids, err
}

// purchases

type memPurchases struct{ s *MemoryStore }

func (r memPurchases) Create(ctx context.Context, p *model.Purchase) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.purchases, p.ID, *p)
		return nil
	})
}

func (r memPurchases) GetByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var out *model.Purchase
	err := r.s.run(ctx, func(*memTx) error {
		p, ok := r.s.purchases[id]
		if !ok {
			return ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memPurchases) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r memPurchases) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PurchaseStatus, at time.Time) error {
	return r.s.run(ctx, func(tx *memTx) error {
		p, ok := r.s.purchases[id]
		if !ok {
			return ErrNotFound
		}
		p.Status = status
		p.UpdatedAt = at
		put(tx, r.s.purchases, id, p)
		return nil
	})
}

func (r memPurchases) ListByClient(ctx context.Context, clientID uuid.UUID) ([]model.Purchase, error) {
	var out []model.Purchase
	err := r.s.run(ctx, func(*memTx) error {
		for _, p := range r.s.purchases {
			if p.ClientID == clientID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

// payments

type memPayments struct{ s *MemoryStore }

func (r memPayments) Create(ctx context.Context, p *model.Payment) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.payments, p.ID, *p)
		return nil
	})
}

func (r memPayments) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var out *model.Payment
	err := r.s.run(ctx, func(*memTx) error {
		p, ok := r.s.payments[id]
		if !ok {
			return ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memPayments) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	err := r.s.run(ctx, func(*memTx) error {
		for _, p := range r.s.payments {
			if p.PurchaseID == purchaseID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

// users

type memUsers struct{ s *MemoryStore }

func (r memUsers) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var out *model.User
	err := r.s.run(ctx, func(*memTx) error {
		u, ok := r.s.users[id]
		if !ok {
			return ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r memUsers) Upsert(ctx context.Context, u *model.User) error {
	return r.s.run(ctx, func(tx *memTx) error {
		put(tx, r.s.users, u.ID, *u)
		return nil
	})
}
