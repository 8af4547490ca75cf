package domain

import "github.com/google/uuid"

// Role names carried in the JWT "role" claim.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Caller identifies who invokes an operation.  It is resolved once at the
// transport boundary and passed explicitly to every core operation.
type Caller struct {
	UserID uuid.UUID
	Email  string
	Admin  bool
}

// CanAccess reports whether the caller may act on an entity owned by ownerID.
func (c Caller) CanAccess(ownerID uuid.UUID) bool {
	return c.Admin || c.UserID == ownerID
}
