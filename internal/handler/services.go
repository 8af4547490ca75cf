package handler

import (
    "context"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
    "github.com/iliyamo/cinema-booking-engine/internal/model"
    "github.com/iliyamo/cinema-booking-engine/internal/service"
)

// The interfaces below are the slices of the service layer each handler
// calls; *service.XService values satisfy them.

type Catalog interface {
    CreateHall(ctx context.Context, name string, rows int) (*model.Hall, error)
    CreateFilm(ctx context.Context, title string, durationMinutes int, ageRating string) (*model.Film, error)
    CreateCategory(ctx context.Context, name string, priceCents int) (*model.SeatCategory, error)
    UpdateCategoryPrice(ctx context.Context, id uuid.UUID, priceCents int) (*model.SeatCategory, error)
}

type SeatPlans interface {
    GetPlan(ctx context.Context, hallID uuid.UUID) (*service.Plan, error)
    UpdatePlan(ctx context.Context, hallID uuid.UUID, rows int, seats []service.SeatSpec) (*service.Plan, error)
}

type Scheduler interface {
    ScheduleSession(ctx context.Context, filmID, hallID uuid.UUID, startAt time.Time) (*model.Session, error)
    RescheduleSession(ctx context.Context, sessionID, filmID, hallID uuid.UUID, startAt time.Time) (*model.Session, error)
    DeleteSession(ctx context.Context, sessionID uuid.UUID) error
    GetSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error)
}

type Tickets interface {
    Reserve(ctx context.Context, ticketID uuid.UUID, caller domain.Caller) (*model.Ticket, error)
    CancelReservation(ctx context.Context, ticketID uuid.UUID, caller domain.Caller) (*model.Ticket, error)
    ListForSession(ctx context.Context, sessionID uuid.UUID, status *model.TicketStatus) ([]model.Ticket, error)
}

type Purchases interface {
    CreatePurchase(ctx context.Context, ticketIDs []uuid.UUID, caller domain.Caller) (*service.PurchaseDetails, error)
    CancelPurchase(ctx context.Context, purchaseID uuid.UUID, caller domain.Caller) (*model.Purchase, error)
    GetPurchase(ctx context.Context, purchaseID uuid.UUID, caller domain.Caller) (*service.PurchaseDetails, error)
    ListPurchases(ctx context.Context, caller domain.Caller) ([]model.Purchase, error)
}

type Settlement interface {
    Settle(ctx context.Context, purchaseID uuid.UUID) (*service.Settlement, error)
    GetPaymentStatus(ctx context.Context, paymentID uuid.UUID, caller domain.Caller) (*model.Payment, error)
}

// PlanCache drops cached seat plan responses after a plan change.
type PlanCache interface {
    Invalidate(ctx context.Context, path string)
}
