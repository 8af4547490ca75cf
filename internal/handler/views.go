package handler

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-engine/internal/domain"
    "github.com/iliyamo/cinema-booking-engine/internal/model"
    "github.com/iliyamo/cinema-booking-engine/internal/service"
)

// bind decodes the request body, reporting malformed JSON as a validation
// error.
func bind(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return domain.Validation("invalid request body")
    }
    return nil
}

type hallView struct {
    ID        uuid.UUID `json:"id"`
    Name      string    `json:"name"`
    Rows      int       `json:"rows"`
    CreatedAt time.Time `json:"created_at"`
}

func newHallView(h *model.Hall) hallView {
    return hallView{ID: h.ID, Name: h.Name, Rows: h.Rows, CreatedAt: h.CreatedAt}
}

type categoryView struct {
    ID         uuid.UUID `json:"id"`
    Name       string    `json:"name"`
    PriceCents int       `json:"price_cents"`
}

func newCategoryView(c model.SeatCategory) categoryView {
    return categoryView{ID: c.ID, Name: c.Name, PriceCents: c.PriceCents}
}

type seatView struct {
    ID         uuid.UUID `json:"id"`
    Row        int       `json:"row"`
    Number     int       `json:"number"`
    Label      string    `json:"label"`
    CategoryID uuid.UUID `json:"category_id"`
}

type planView struct {
    HallID     uuid.UUID      `json:"hall_id"`
    Rows       int            `json:"rows"`
    Seats      []seatView     `json:"seats"`
    Categories []categoryView `json:"categories"`
}

func newPlanView(p *service.Plan) planView {
    v := planView{
        HallID:     p.HallID,
        Rows:       p.Rows,
        Seats:      make([]seatView, len(p.Seats)),
        Categories: make([]categoryView, len(p.Categories)),
    }
    for i, s := range p.Seats {
        v.Seats[i] = seatView{ID: s.ID, Row: s.Row, Number: s.Number, Label: seatLabel(s.Row, s.Number), CategoryID: s.CategoryID}
    }
    for i, c := range p.Categories {
        v.Categories[i] = newCategoryView(c)
    }
    return v
}

type filmView struct {
    ID              uuid.UUID `json:"id"`
    Title           string    `json:"title"`
    DurationMinutes int       `json:"duration_minutes"`
    AgeRating       string    `json:"age_rating"`
}

func newFilmView(f *model.Film) filmView {
    return filmView{ID: f.ID, Title: f.Title, DurationMinutes: f.DurationMinutes, AgeRating: f.AgeRating}
}

type sessionView struct {
    ID      uuid.UUID `json:"id"`
    FilmID  uuid.UUID `json:"film_id"`
    HallID  uuid.UUID `json:"hall_id"`
    StartAt time.Time `json:"start_at"`
}

func newSessionView(s *model.Session) sessionView {
    return sessionView{ID: s.ID, FilmID: s.FilmID, HallID: s.HallID, StartAt: s.StartAt}
}

type ticketView struct {
    ID            uuid.UUID          `json:"id"`
    SessionID     uuid.UUID          `json:"session_id"`
    SeatID        uuid.UUID          `json:"seat_id"`
    Row           int                `json:"row"`
    Number        int                `json:"number"`
    Label         string             `json:"label"`
    CategoryID    uuid.UUID          `json:"category_id"`
    PriceCents    int                `json:"price_cents"`
    Status        model.TicketStatus `json:"status"`
    ReservedBy    *uuid.UUID         `json:"reserved_by,omitempty"`
    ReservedUntil *time.Time         `json:"reserved_until,omitempty"`
    PurchaseID    *uuid.UUID         `json:"purchase_id,omitempty"`
}

func newTicketView(t *model.Ticket) ticketView {
    return ticketView{
        ID:            t.ID,
        SessionID:     t.SessionID,
        SeatID:        t.SeatID,
        Row:           t.Row,
        Number:        t.Number,
        Label:         seatLabel(t.Row, t.Number),
        CategoryID:    t.CategoryID,
        PriceCents:    t.PriceCents,
        Status:        t.Status,
        ReservedBy:    t.ReservedBy,
        ReservedUntil: t.ReservedUntil,
        PurchaseID:    t.PurchaseID,
    }
}

type paymentView struct {
    ID         uuid.UUID           `json:"id"`
    PurchaseID uuid.UUID           `json:"purchase_id"`
    Status     model.PaymentStatus `json:"status"`
    CreatedAt  time.Time           `json:"created_at"`
}

func newPaymentView(p model.Payment) paymentView {
    return paymentView{ID: p.ID, PurchaseID: p.PurchaseID, Status: p.Status, CreatedAt: p.CreatedAt}
}

type purchaseView struct {
    ID         uuid.UUID            `json:"id"`
    ClientID   uuid.UUID            `json:"client_id"`
    Status     model.PurchaseStatus `json:"status"`
    TotalCents int                  `json:"total_cents"`
    CreatedAt  time.Time            `json:"created_at"`
    UpdatedAt  time.Time            `json:"updated_at"`
    TicketIDs  []uuid.UUID          `json:"ticket_ids,omitempty"`
    Payments   []paymentView        `json:"payments,omitempty"`
}

func newPurchaseView(p model.Purchase) purchaseView {
    return purchaseView{
        ID:         p.ID,
        ClientID:   p.ClientID,
        Status:     p.Status,
        TotalCents: p.TotalCents,
        CreatedAt:  p.CreatedAt,
        UpdatedAt:  p.UpdatedAt,
    }
}

func newPurchaseDetailsView(d *service.PurchaseDetails) purchaseView {
    v := newPurchaseView(d.Purchase)
    v.TicketIDs = d.TicketIDs
    for _, p := range d.Payments {
        v.Payments = append(v.Payments, newPaymentView(p))
    }
    return v
}

type settlementView struct {
    paymentView
    PurchaseStatus model.PurchaseStatus `json:"purchase_status"`
    Message        string               `json:"message"`
}
