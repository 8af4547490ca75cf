// Package repository persists the booking engine's entities.  Two backends
// implement the Store interfaces: MySQL (hand-written SQL over database/sql)
// and an in-memory store used by tests and STORAGE=memory deployments.
//
// Lookups that find nothing return ErrNotFound; the service layer turns it
// into a domain.NotFound error naming the missing entity.
package repository

import "errors"

// ErrNotFound is returned when a row with the requested key does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert would violate a unique key, such
// as two seats sharing the same (row, number) within a hall.
var ErrDuplicate = errors.New("duplicate record")
