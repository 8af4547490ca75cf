package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

// SeatSpec describes one seat of a requested plan.
type SeatSpec struct {
	Row        int
	Number     int
	CategoryID uuid.UUID
}

// Plan is a hall's layout: declared rows, seats ordered by position and the
// categories those seats use.
type Plan struct {
	HallID     uuid.UUID
	Rows       int
	Seats      []model.Seat
	Categories []model.SeatCategory
}

// SeatPlanService reads and replaces hall seat plans.
type SeatPlanService struct {
	base
}

// NewSeatPlanService creates a SeatPlanService.
func NewSeatPlanService(store *repository.Store, opts ...Option) *SeatPlanService {
	return &SeatPlanService{base: newBase(store, opts)}
}

// GetPlan returns the current plan of a hall.
func (s *SeatPlanService) GetPlan(ctx context.Context, hallID uuid.UUID) (*Plan, error) {
	hall, err := s.store.Halls.GetByID(ctx, hallID)
	if err != nil {
		return nil, notFound(err, "hall", hallID)
	}
	return s.loadPlan(ctx, hall)
}

// UpdatePlan replaces every seat of the hall and its declared row count in
// one transaction.  Tickets of already scheduled sessions are untouched.
func (s *SeatPlanService) UpdatePlan(ctx context.Context, hallID uuid.UUID, rows int, seats []SeatSpec) (*Plan, error) {
	var plan *Plan
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		hall, err := s.store.Halls.GetForUpdate(ctx, hallID)
		if err != nil {
			return notFound(err, "hall", hallID)
		}
		if err := validateSeats(rows, seats); err != nil {
			return err
		}
		if err := s.requireCategories(ctx, seats); err != nil {
			return err
		}

		if err := s.store.Seats.DeleteByHall(ctx, hallID); err != nil {
			return fmt.Errorf("delete seats: %w", err)
		}
		created := make([]model.Seat, len(seats))
		for i, spec := range seats {
			created[i] = model.Seat{
				ID:         uuid.New(),
				HallID:     hallID,
				Row:        spec.Row,
				Number:     spec.Number,
				CategoryID: spec.CategoryID,
			}
		}
		if err := s.store.Seats.CreateBulk(ctx, created); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return domain.Validation("seat positions must be unique within a hall")
			}
			return fmt.Errorf("insert seats: %w", err)
		}
		if err := s.store.Halls.UpdateRows(ctx, hallID, rows); err != nil {
			return fmt.Errorf("update hall rows: %w", err)
		}
		hall.Rows = rows
		plan, err = s.loadPlan(ctx, hall)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("seat plan replaced", zap.Stringer("hall_id", hallID), zap.Int("seats", len(seats)), zap.Int("rows", rows))
	return plan, nil
}

func validateSeats(rows int, seats []SeatSpec) error {
	if len(seats) == 0 {
		return domain.Validation("seat plan must contain at least one seat")
	}
	type pos struct{ row, number int }
	seen := make(map[pos]bool, len(seats))
	maxRow := 0
	for _, sp := range seats {
		if sp.Row < 1 || sp.Number < 1 {
			return domain.Validation("seat row and number must be at least 1 (got row %d, number %d)", sp.Row, sp.Number)
		}
		p := pos{sp.Row, sp.Number}
		if seen[p] {
			return domain.Validation("seat row %d number %d appears more than once", sp.Row, sp.Number)
		}
		seen[p] = true
		if sp.Row > maxRow {
			maxRow = sp.Row
		}
	}
	if rows < maxRow {
		return domain.Validation("hall declares %d rows but a seat is placed in row %d", rows, maxRow)
	}
	return nil
}

// requireCategories fails with NotFound listing every referenced category
// that does not exist.
func (s *SeatPlanService) requireCategories(ctx context.Context, seats []SeatSpec) error {
	ids := distinctCategoryIDs(seats)
	found, err := s.store.Categories.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	have := make(map[uuid.UUID]bool, len(found))
	for _, c := range found {
		have[c.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return domain.NotFound("seat categories not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

func distinctCategoryIDs(seats []SeatSpec) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, sp := range seats {
		if !seen[sp.CategoryID] {
			seen[sp.CategoryID] = true
			ids = append(ids, sp.CategoryID)
		}
	}
	return ids
}

func (s *SeatPlanService) loadPlan(ctx context.Context, hall *model.Hall) (*Plan, error) {
	seats, err := s.store.Seats.ListByHall(ctx, hall.ID)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, st := range seats {
		if !seen[st.CategoryID] {
			seen[st.CategoryID] = true
			ids = append(ids, st.CategoryID)
		}
	}
	cats, err := s.store.Categories.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return &Plan{HallID: hall.ID, Rows: hall.Rows, Seats: seats, Categories: cats}, nil
}
