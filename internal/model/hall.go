package model

import (
    "time"

    "github.com/google/uuid"
)

// Hall represents a screening hall.  The hall owns a seat plan: the set of
// Seat rows that reference it.  Rows records the declared number of seat
// rows; every seat row must fit within it.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the hall.
//  Rows      – declared number of seat rows.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Hall struct {
    ID        uuid.UUID // halls.id
    Name      string    // halls.name
    Rows      int       // halls.seat_rows
    CreatedAt time.Time // halls.created_at
    UpdatedAt time.Time // halls.updated_at
}
