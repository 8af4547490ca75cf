package model

import "github.com/google/uuid"

// Seat describes a physical seat in a hall.  Seats are uniquely
// identified by their hall, row and number.  Each seat is priced through
// the SeatCategory it references.  A hall's seats are replaced as a whole
// whenever its plan changes.
//
// Fields:
//  ID         – primary key identifier.
//  HallID     – hall to which this seat belongs.
//  Row        – 1-based row index.
//  Number     – 1-based position within the row.
//  CategoryID – pricing category of the seat.
type Seat struct {
    ID         uuid.UUID // seats.id
    HallID     uuid.UUID // seats.hall_id
    Row        int       // seats.seat_row
    Number     int       // seats.seat_number
    CategoryID uuid.UUID // seats.category_id
}

// SeatCategory is a named price tier.  Tickets copy the category id and
// price when they are created, so editing PriceCents never changes tickets
// that already exist.
type SeatCategory struct {
    ID         uuid.UUID // seat_categories.id
    Name       string    // seat_categories.name
    PriceCents int       // seat_categories.price_cents
}
