package handler

import (
    "net/http"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// CustomerHandler serves ticket holds, purchases and payments on behalf of
// the authenticated caller.  Ownership rules are enforced by the services.
type CustomerHandler struct {
    tickets    Tickets
    purchases  Purchases
    settlement Settlement
    log        *zap.Logger
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(tickets Tickets, purchases Purchases, settlement Settlement, log *zap.Logger) *CustomerHandler {
    if tickets == nil || purchases == nil || settlement == nil {
        panic("nil service passed to NewCustomerHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &CustomerHandler{tickets: tickets, purchases: purchases, settlement: settlement, log: log}
}

// ReserveTicket handles POST /v1/tickets/:id/reserve.
func (h *CustomerHandler) ReserveTicket(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    t, err := h.tickets.Reserve(c.Request().Context(), id, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newTicketView(t))
}

// CancelReservation handles POST /v1/tickets/:id/cancel-reservation.
func (h *CustomerHandler) CancelReservation(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    t, err := h.tickets.CancelReservation(c.Request().Context(), id, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newTicketView(t))
}

// CreatePurchase handles POST /v1/purchases.
func (h *CustomerHandler) CreatePurchase(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    var req struct {
        TicketIDs []uuid.UUID `json:"ticket_ids"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    d, err := h.purchases.CreatePurchase(c.Request().Context(), req.TicketIDs, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, newPurchaseDetailsView(d))
}

// ListPurchases handles GET /v1/purchases.
func (h *CustomerHandler) ListPurchases(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    list, err := h.purchases.ListPurchases(c.Request().Context(), caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    out := make([]purchaseView, len(list))
    for i, p := range list {
        out[i] = newPurchaseView(p)
    }
    return c.JSON(http.StatusOK, echo.Map{"purchases": out})
}

// GetPurchase handles GET /v1/purchases/:id.
func (h *CustomerHandler) GetPurchase(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    d, err := h.purchases.GetPurchase(c.Request().Context(), id, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newPurchaseDetailsView(d))
}

// CancelPurchase handles POST /v1/purchases/:id/cancel.
func (h *CustomerHandler) CancelPurchase(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    p, err := h.purchases.CancelPurchase(c.Request().Context(), id, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newPurchaseView(*p))
}

// Settle handles POST /v1/payments.  The caller must own the purchase or be
// an administrator.
func (h *CustomerHandler) Settle(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    var req struct {
        PurchaseID uuid.UUID `json:"purchase_id"`
    }
    if err := bind(c, &req); err != nil {
        return writeError(c, h.log, err)
    }
    if req.PurchaseID == uuid.Nil {
        return writeError(c, h.log, errMissingField("purchase_id"))
    }
    ctx := c.Request().Context()
    if _, err := h.purchases.GetPurchase(ctx, req.PurchaseID, caller); err != nil {
        return writeError(c, h.log, err)
    }
    res, err := h.settlement.Settle(ctx, req.PurchaseID)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusCreated, settlementView{
        paymentView:    newPaymentView(res.Payment),
        PurchaseStatus: res.PurchaseStatus,
        Message:        res.Message,
    })
}

// GetPayment handles GET /v1/payments/:id.
func (h *CustomerHandler) GetPayment(c echo.Context) error {
    caller, err := callerOf(c)
    if err != nil {
        return writeError(c, h.log, err)
    }
    id, err := pathID(c, "id")
    if err != nil {
        return writeError(c, h.log, err)
    }
    p, err := h.settlement.GetPaymentStatus(c.Request().Context(), id, caller)
    if err != nil {
        return writeError(c, h.log, err)
    }
    return c.JSON(http.StatusOK, newPaymentView(*p))
}
