// Package service implements the booking engine's core operations: seat
// plans, session scheduling, the ticket lifecycle, purchases and payment
// settlement.  Every operation runs against repository.Store and reports
// failures as domain errors.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

const (
	// ReservationHold is how long a reserved ticket stays held.
	ReservationHold = 15 * time.Minute
	// SessionBuffer is the minimum gap between two sessions of one hall.
	SessionBuffer = 20 * time.Minute
)

// Notifier delivers a message to a client's email address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PaymentDecider produces the outcome of one settlement attempt.
type PaymentDecider interface {
	Decide(ctx context.Context, purchaseID uuid.UUID) (model.PaymentStatus, error)
}

// Option customizes a service.
type Option func(*base)

// WithLogger sets the logger.  A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

type base struct {
	store *repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func newBase(store *repository.Store, opts []Option) base {
	b := base{
		store: store,
		log:   zap.NewNop(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(&b)
	}
	return b
}

// notFound translates repository.ErrNotFound into a domain error naming the
// missing entity; any other error passes through.
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.NotFound("%s %s not found", entity, id)
	}
	return err
}
