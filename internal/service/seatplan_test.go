package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
)

func TestGetPlan(t *testing.T) {
	f := newFixture(t)
	vip, err := f.catalog.CreateCategory(f.ctx, "VIP", 2500)
	require.NoError(t, err)

	seats := []SeatSpec{
		{Row: 2, Number: 2, CategoryID: vip.ID},
		{Row: 1, Number: 2, CategoryID: f.category.ID},
		{Row: 2, Number: 1, CategoryID: vip.ID},
		{Row: 1, Number: 1, CategoryID: f.category.ID},
	}
	_, err = f.plans.UpdatePlan(f.ctx, f.hall.ID, 3, seats)
	require.NoError(t, err)

	plan, err := f.plans.GetPlan(f.ctx, f.hall.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Rows)
	require.Len(t, plan.Seats, 4)
	got := make([][2]int, len(plan.Seats))
	for i, s := range plan.Seats {
		got[i] = [2]int{s.Row, s.Number}
	}
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}}, got)
	require.Len(t, plan.Categories, 2)
	assert.Equal(t, "Standard", plan.Categories[0].Name)
	assert.Equal(t, "VIP", plan.Categories[1].Name)

	_, err = f.plans.GetPlan(f.ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdatePlanValidation(t *testing.T) {
	f := newFixture(t)
	cat := f.category.ID
	missing := uuid.New()

	tests := []struct {
		name  string
		rows  int
		seats []SeatSpec
		kind  error
	}{
		{"empty", 2, nil, domain.ErrValidation},
		{"row zero", 2, []SeatSpec{{Row: 0, Number: 1, CategoryID: cat}}, domain.ErrValidation},
		{"number zero", 2, []SeatSpec{{Row: 1, Number: 0, CategoryID: cat}}, domain.ErrValidation},
		{"duplicate position", 2, []SeatSpec{{Row: 1, Number: 1, CategoryID: cat}, {Row: 1, Number: 1, CategoryID: cat}}, domain.ErrValidation},
		{"row beyond declared rows", 1, []SeatSpec{{Row: 2, Number: 1, CategoryID: cat}}, domain.ErrValidation},
		{"unknown category", 2, []SeatSpec{{Row: 1, Number: 1, CategoryID: missing}}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.plans.UpdatePlan(f.ctx, f.hall.ID, tt.rows, tt.seats)
			require.ErrorIs(t, err, tt.kind)
		})
	}

	_, err := f.plans.UpdatePlan(f.ctx, f.hall.ID, 2, []SeatSpec{{Row: 1, Number: 1, CategoryID: missing}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing.String())

	_, err = f.plans.UpdatePlan(f.ctx, uuid.New(), 1, grid(1, 1, cat))
	require.ErrorIs(t, err, domain.ErrNotFound)

	plan, err := f.plans.GetPlan(f.ctx, f.hall.ID)
	require.NoError(t, err)
	assert.Len(t, plan.Seats, 4, "rejected updates leave the plan intact")
}

func TestUpdatePlanKeepsExistingTickets(t *testing.T) {
	f := newFixture(t)
	before := f.schedule(t, at(10, 0))

	plan, err := f.plans.UpdatePlan(f.ctx, f.hall.ID, 3, grid(3, 3, f.category.ID))
	require.NoError(t, err)
	assert.Len(t, plan.Seats, 9)

	old := f.ticketsOf(t, before.ID)
	require.Len(t, old, 4)
	assert.Equal(t, 2, old[3].Row)
	assert.Equal(t, 2, old[3].Number)

	after := f.schedule(t, at(14, 0))
	assert.Len(t, f.ticketsOf(t, after.ID), 9)
}
