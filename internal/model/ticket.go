package model

import (
    "time"

    "github.com/google/uuid"
)

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
    TicketAvailable TicketStatus = "AVAILABLE"
    TicketReserved  TicketStatus = "RESERVED"
    TicketSold      TicketStatus = "SOLD"
)

// ParseTicketStatus validates a status string.
func ParseTicketStatus(s string) (TicketStatus, bool) {
    switch TicketStatus(s) {
    case TicketAvailable, TicketReserved, TicketSold:
        return TicketStatus(s), true
    }
    return "", false
}

// Ticket is the sellable unit for one seat in one session.  Row, Number,
// CategoryID and PriceCents are snapshots taken when the session was
// scheduled, so they survive later plan replacements and price edits.
//
// Invariants:
//  RESERVED  – ReservedBy and ReservedUntil are both set.
//  AVAILABLE – ReservedBy, ReservedUntil and PurchaseID are all nil.
//  A ticket with a PurchaseID is "bound" and is never AVAILABLE.
type Ticket struct {
    ID            uuid.UUID    // tickets.id
    SessionID     uuid.UUID    // tickets.session_id
    SeatID        uuid.UUID    // tickets.seat_id
    Row           int          // tickets.seat_row
    Number        int          // tickets.seat_number
    CategoryID    uuid.UUID    // tickets.category_id
    PriceCents    int          // tickets.price_cents
    Status        TicketStatus // tickets.status
    ReservedBy    *uuid.UUID   // tickets.reserved_by (nullable)
    ReservedUntil *time.Time   // tickets.reserved_until (nullable)
    PurchaseID    *uuid.UUID   // tickets.purchase_id (nullable)
}

// Bound reports whether the ticket belongs to a purchase.
func (t *Ticket) Bound() bool { return t.PurchaseID != nil }

// HeldBy reports whether the ticket is an unbound hold of userID.
func (t *Ticket) HeldBy(userID uuid.UUID) bool {
    return t.Status == TicketReserved && !t.Bound() && t.ReservedBy != nil && *t.ReservedBy == userID
}

// Release returns the ticket to AVAILABLE and clears every holder field.
func (t *Ticket) Release() {
    t.Status = TicketAvailable
    t.ReservedBy = nil
    t.ReservedUntil = nil
    t.PurchaseID = nil
}
