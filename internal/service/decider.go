package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-engine/internal/model"
)

var outcomes = []model.PaymentStatus{model.PaymentSuccess, model.PaymentFailed, model.PaymentPending}

// RandomDecider picks one of SUCCESS, FAILED and PENDING uniformly.  It
// stands in for a payment provider.
type RandomDecider struct{}

// Decide implements PaymentDecider.
func (RandomDecider) Decide(context.Context, uuid.UUID) (model.PaymentStatus, error) {
	return outcomes[rand.Intn(len(outcomes))], nil
}

// FixedDecider always returns Outcome.
type FixedDecider struct {
	Outcome model.PaymentStatus
}

// Decide implements PaymentDecider.
func (d FixedDecider) Decide(context.Context, uuid.UUID) (model.PaymentStatus, error) {
	return d.Outcome, nil
}

// NewDecider returns a FixedDecider for a non-empty forced outcome and a
// RandomDecider otherwise.
func NewDecider(forced string) (PaymentDecider, error) {
	if forced == "" {
		return RandomDecider{}, nil
	}
	st, ok := model.ParsePaymentStatus(forced)
	if !ok {
		return nil, fmt.Errorf("unknown payment outcome %q", forced)
	}
	return FixedDecider{Outcome: st}, nil
}
