package entity

import "time"

// Notification types
const (
	NotificationTypeProjectUpdate      = "project_update"
	NotificationTypeProjectReview      = "project_review"
	NotificationTypeProjectCompleted   = "project_completed"
	NotificationTypeMilestoneCompleted = "milestone_completed"
	NotificationTypeInvoiceSent        = "invoice_sent"
	NotificationTypePaymentReceived    = "payment_received"
	NotificationTypeFileShared         = "file_shared"
)

// Notification priorities
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification is an in-app record of an event, optionally mirrored to
// email/SMS. The sent flags flip to true at most once each.
type Notification struct {
	ID           int64
	ClientID     int64
	Type         string
	Title        string
	Message      string
	Priority     string
	Read         bool
	ProjectID    *int64
	InvoiceID    *int64
	FileID       *int64
	SentViaEmail bool
	EmailSentAt  *time.Time
	SentViaSMS   bool
	SMSSentAt    *time.Time
	CreatedAt    time.Time
}
