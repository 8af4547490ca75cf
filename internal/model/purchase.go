package model

import (
    "time"

    "github.com/google/uuid"
)

// PurchaseStatus is the lifecycle state of a purchase.
type PurchaseStatus string

const (
    PurchasePending   PurchaseStatus = "PENDING"
    PurchasePaid      PurchaseStatus = "PAID"
    PurchaseFailed    PurchaseStatus = "FAILED"
    PurchaseCancelled PurchaseStatus = "CANCELLED"
)

// Purchase groups tickets bought by one client.  TotalCents is the sum of
// the bound tickets' price snapshots at creation time.
type Purchase struct {
    ID         uuid.UUID      // purchases.id
    ClientID   uuid.UUID      // purchases.client_id
    Status     PurchaseStatus // purchases.status
    TotalCents int            // purchases.total_cents
    CreatedAt  time.Time      // purchases.created_at
    UpdatedAt  time.Time      // purchases.updated_at
}

// PaymentStatus is the outcome of one settlement attempt.
type PaymentStatus string

const (
    PaymentSuccess PaymentStatus = "SUCCESS"
    PaymentFailed  PaymentStatus = "FAILED"
    PaymentPending PaymentStatus = "PENDING"
)

// ParsePaymentStatus validates an outcome string.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
    switch PaymentStatus(s) {
    case PaymentSuccess, PaymentFailed, PaymentPending:
        return PaymentStatus(s), true
    }
    return "", false
}

// PurchaseStatus maps a payment outcome onto the purchase status it implies.
func (s PaymentStatus) PurchaseStatus() PurchaseStatus {
    switch s {
    case PaymentSuccess:
        return PurchasePaid
    case PaymentFailed:
        return PurchaseFailed
    default:
        return PurchasePending
    }
}

// Payment is one settlement attempt for a purchase.  The most recent
// payment of a purchase is authoritative.
type Payment struct {
    ID         uuid.UUID     // payments.id
    PurchaseID uuid.UUID     // payments.purchase_id
    Status     PaymentStatus // payments.status
    CreatedAt  time.Time     // payments.created_at
}
