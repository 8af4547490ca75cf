package model

import (
    "time"

    "github.com/google/uuid"
)

// Session is a scheduled showing of a film in a hall.  Its occupied time
// is [StartAt, StartAt + film duration]; sessions of the same hall keep a
// mandatory buffer between their occupied windows.
type Session struct {
    ID        uuid.UUID // sessions.id
    FilmID    uuid.UUID // sessions.film_id
    HallID    uuid.UUID // sessions.hall_id
    StartAt   time.Time // sessions.start_at
    CreatedAt time.Time // sessions.created_at
    UpdatedAt time.Time // sessions.updated_at
}

// Slot is the occupied window of an existing session.  End is derived
// from the film duration at query time.
type Slot struct {
    SessionID uuid.UUID
    Start     time.Time
    End       time.Time
}
