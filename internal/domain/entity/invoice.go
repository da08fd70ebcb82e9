package entity

import "time"

// Invoice status values
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice bills a client for a project. All money is in integer cents;
// TotalCents must equal AmountCents + TaxCents.
type Invoice struct {
	ID            int64
	ProjectID     int64
	ClientID      int64
	InvoiceNumber string
	Status        string
	AmountCents   int64
	TaxCents      int64
	TotalCents    int64
	DueDate       *time.Time
	LineItems     []InvoiceLineItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceLineItem is one ordered line on an invoice.
// AmountCents = Quantity * RateCents.
type InvoiceLineItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    int
	RateCents   int64
	AmountCents int64
	SortOrder   int
}
