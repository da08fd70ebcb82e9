package entity

import "time"

// Payment status values
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment records money received against an invoice. An invoice is paid
// once the sum of its completed payments reaches the invoice total.
type Payment struct {
	ID          int64
	InvoiceID   int64
	AmountCents int64
	Status      string
	Method      string
	ReceivedAt  time.Time
}
