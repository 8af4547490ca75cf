package model

import "github.com/google/uuid"

// User is the slice of a user account the engine reads: settlement needs
// the client's email address to send the outcome notification.  Accounts
// are created and authenticated elsewhere.
type User struct {
    ID    uuid.UUID // users.id
    Email string    // users.email
}
