package handler

import (
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-booking-engine/internal/service"
)

// AdminHandler serves the ADMIN-only endpoints: catalog entries, seat plans
// and the session timeline.
type AdminHandler struct {
    catalog   Catalog
    plans     SeatPlans
    scheduler Scheduler
    cache     PlanCache
    log       *zap.Logger
}

// NewAdminHandler constructs an AdminHandler.  cache may be nil.
func NewAdminHandler(catalog Catalog, plans SeatPlans, scheduler Scheduler, cache PlanCache, log *zap.Logger) *AdminHandler {
    if catalog == nil || plans == nil || scheduler == nil {
        panic("nil service passed to NewAdminHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &AdminHandler{catalog: catalog, plans: plans, scheduler: scheduler, cache: cache, log: log}
}

// CreateHall handles POST /v1/halls.
func (h *AdminHandler) CreateHall(c echo.Context) error {
    var req struct {
        Name string `json:"name"`
        Rows int    `json:"rows"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    hall, err := h.catalog.CreateHall(c.Request().Context(), req.Name, req.Rows)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, newHallView(hall))
}

// UpdatePlan handles PUT /v1/halls/:id/plan.  The whole seat list is
// replaced.
func (h *AdminHandler) UpdatePlan(c echo.Context) error {
    hallID, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    var req struct {
        Rows  int `json:"rows"`
        Seats []struct {
            Row        int       `json:"row"`
            Number     int       `json:"number"`
            CategoryID uuid.UUID `json:"category_id"`
        } `json:"seats"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    specs := make([]service.SeatSpec, len(req.Seats))
    for i, s := range req.Seats {
        specs[i] = service.SeatSpec{Row: s.Row, Number: s.Number, CategoryID: s.CategoryID}
    }
    ctx := c.Request().Context()
    plan, err := h.plans.UpdatePlan(ctx, hallID, req.Rows, specs)
    if err != nil {
        return writeError(c, h.log, err)
    }
    if h.cache != nil {
        h.cache.Invalidate(ctx, c.Request().URL.Path)
    }
    return c.JSON(http.StatusOK, newPlanView(plan))
}

// CreateFilm handles POST /v1/films.
func (h *AdminHandler) CreateFilm(c echo.Context) error {
    var req struct {
        Title           string `json:"title"`
        DurationMinutes int    `json:"duration_minutes"`
        AgeRating       string `json:"age_rating"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    film, err := h.catalog.CreateFilm(c.Request().Context(), req.Title, req.DurationMinutes, req.AgeRating)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, newFilmView(film))
}

// CreateCategory handles POST /v1/seat-categories.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
    var req struct {
        Name       string `json:"name"`
        PriceCents int    `json:"price_cents"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    cat, err := h.catalog.CreateCategory(c.Request().Context(), req.Name, req.PriceCents)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, newCategoryView(*cat))
}

// UpdateCategoryPrice handles PATCH /v1/seat-categories/:id.
func (h *AdminHandler) UpdateCategoryPrice(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    var req struct {
        PriceCents *int `json:"price_cents"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    if req.PriceCents == nil {
        return writeError(c, h.log, errMissingField("price_cents"))
    }
    cat, err := h.catalog.UpdateCategoryPrice(c.Request().Context(), id, *req.PriceCents)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newCategoryView(*cat))
}

type sessionRequest struct {
    FilmID  uuid.UUID `json:"film_id"`
    HallID  uuid.UUID `json:"hall_id"`
    StartAt time.Time `json:"start_at"`
}

func (r sessionRequest) validate() error {
    switch {
    case r.FilmID == uuid.Nil:
        return errMissingField("film_id")
    case r.HallID == uuid.Nil:
        return errMissingField("hall_id")
    case r.StartAt.IsZero():
        return errMissingField("start_at")
    }
    return nil
}

// ScheduleSession handles POST /v1/sessions.
func (h *AdminHandler) ScheduleSession(c echo.Context) error {
    var req sessionRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    if err := req.validate(); err != nil {
        return writeError(c, h.log, err)
    }
    s, err := h.scheduler.ScheduleSession(c.Request().Context(), req.FilmID, req.HallID, req.StartAt)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, newSessionView(s))
}

// RescheduleSession handles PUT /v1/sessions/:id.
func (h *AdminHandler) RescheduleSession(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    var req sessionRequest
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    if err := req.validate(); err != nil {
        return writeError(c, h.log, err)
    }
    s, err := h.scheduler.RescheduleSession(c.Request().Context(), id, req.FilmID, req.HallID, req.StartAt)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newSessionView(s))
}

// DeleteSession handles DELETE /v1/sessions/:id.
func (h *AdminHandler) DeleteSession(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    if err := h.scheduler.DeleteSession(c.Request().Context(), id); err != nil {
        return writeError(c, h.log, err)
    }
    return c.NoContent(http.StatusNoContent)
}
