package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
    "github.com/iliyamo/cinema-booking-engine/internal/model"
)

// PublicHandler serves read-only endpoints that need no authentication.
type PublicHandler struct {
    plans     SeatPlans
    scheduler Scheduler
    tickets   Tickets
    log       *zap.Logger
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(plans SeatPlans, scheduler Scheduler, tickets Tickets, log *zap.Logger) *PublicHandler {
    if log == nil {
        log = zap.NewNop()
    }
    return &PublicHandler{plans: plans, scheduler: scheduler, tickets: tickets, log: log}
}

// GetPlan handles GET /v1/halls/:id/plan.
func (h *PublicHandler) GetPlan(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    plan, err := h.plans.GetPlan(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newPlanView(plan))
}

// GetSession handles GET /v1/sessions/:id.
func (h *PublicHandler) GetSession(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    s, err := h.scheduler.GetSession(c.Request().Context(), id)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newSessionView(s))
}

// ListTickets handles GET /v1/sessions/:id/tickets?status=.
func (h *PublicHandler) ListTickets(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    var filter *model.TicketStatus
    if raw := c.QueryParam("status"); raw != "" {
        st, ok := model.ParseTicketStatus(raw)
        if !ok {
            return writeError(c, h.log, domain.Validation("unknown ticket status %q", raw))
        }
        filter = &st
    }
    tickets, err := h.tickets.ListForSession(c.Request().Context(), id, filter)
    if err != nil {
        return writeError(c, h.log, err)
    }
    out := make([]ticketView, len(tickets))
    for i := range tickets {
        out[i] = newTicketView(&tickets[i])
    }
    return c.JSON(http.StatusOK, echo.Map{"session_id": id, "tickets": out})
}
