package model

import (
    "time"

    "github.com/google/uuid"
)

// Age ratings accepted for films.
const (
    AgeRatingZeroPlus     = "0+"
    AgeRatingSixPlus      = "6+"
    AgeRatingTwelvePlus   = "12+"
    AgeRatingSixteenPlus  = "16+"
    AgeRatingEighteenPlus = "18+"
)

// ValidAgeRating reports whether r is one of the supported ratings.
func ValidAgeRating(r string) bool {
    switch r {
    case AgeRatingZeroPlus, AgeRatingSixPlus, AgeRatingTwelvePlus, AgeRatingSixteenPlus, AgeRatingEighteenPlus:
        return true
    }
    return false
}

// Film is the movie shown in a session.  Only DurationMinutes matters to
// scheduling.
type Film struct {
    ID              uuid.UUID // films.id
    Title           string    // films.title
    DurationMinutes int       // films.duration_minutes
    AgeRating       string    // films.age_rating
    CreatedAt       time.Time // films.created_at
}

// Duration returns the running time of the film.
func (f Film) Duration() time.Duration {
    return time.Duration(f.DurationMinutes) * time.Minute
}
