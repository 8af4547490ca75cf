package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/domain"
	"github.com/iliyamo/cinema-booking-engine/internal/model"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
)

const maxNameLen = 128

// CatalogService creates the halls, films and categories the engine needs.
type CatalogService struct {
	base
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(store *repository.Store, opts ...Option) *CatalogService {
	return &CatalogService{base: newBase(store, opts)}
}

func checkName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", domain.Validation("%s must not be empty", field)
	}
	if utf8.RuneCountInString(v) > maxNameLen {
		return "", domain.Validation("%s must be at most %d characters", field, maxNameLen)
	}
	return v, nil
}

// CreateHall adds a hall with an empty seat plan.
func (s *CatalogService) CreateHall(ctx context.Context, name string, rows int) (*model.Hall, error) {
	name, err := checkName("hall name", name)
	if err != nil {
		return nil, err
	}
	if rows < 0 {
		return nil, domain.Validation("hall rows must not be negative")
	}
	now := s.now()
	h := &model.Hall{ID: uuid.New(), Name: name, Rows: rows, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Halls.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("insert hall: %w", err)
	}
	s.log.Info("hall created", zap.Stringer("hall_id", h.ID))
	return h, nil
}

// CreateFilm adds a film.
func (s *CatalogService) CreateFilm(ctx context.Context, title string, durationMinutes int, ageRating string) (*model.Film, error) {
	title, err := checkName("film title", title)
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		return nil, domain.Validation("film duration must be positive")
	}
	if !model.ValidAgeRating(ageRating) {
		return nil, domain.Validation("unknown age rating %q", ageRating)
	}
	f := &model.Film{ID: uuid.New(), Title: title, DurationMinutes: durationMinutes, AgeRating: ageRating, CreatedAt: s.now()}
	if err := s.store.Films.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("insert film: %w", err)
	}
	return f, nil
}

// CreateCategory adds a seat category.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, priceCents int) (*model.SeatCategory, error) {
	name, err := checkName("category name", name)
	if err != nil {
		return nil, err
	}
	if priceCents < 0 {
		return nil, domain.Validation("price must not be negative")
	}
	c := &model.SeatCategory{ID: uuid.New(), Name: name, PriceCents: priceCents}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// UpdateCategoryPrice changes the price used for tickets created later.
// Existing tickets keep their snapshot.
func (s *CatalogService) UpdateCategoryPrice(ctx context.Context, id uuid.UUID, priceCents int) (*model.SeatCategory, error) {
	if priceCents < 0 {
		return nil, domain.Validation("price must not be negative")
	}
	var out *model.SeatCategory
	err := s.store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.store.Categories.UpdatePrice(ctx, id, priceCents); err != nil {
			return notFound(err, "seat category", id)
		}
		c, err := s.store.Categories.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "seat category", id)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
