package entity

import "time"

// Workflow type tags recorded in the audit log.
const (
	WorkflowTypeProjectStatusChange = "project_status_change"
	WorkflowTypeMilestoneCompleted  = "milestone_completed"
	WorkflowTypeInvoiceCreated      = "invoice_created"
	WorkflowTypePaymentReceived     = "payment_received"
	WorkflowTypeFileUploaded        = "file_uploaded"
)

// WorkflowLog is an append-only audit record of one workflow execution.
// Rows are never mutated.
type WorkflowLog struct {
	ID           int64
	ResourceID   int64
	WorkflowType string
	Metadata     string // JSON blob
	ExecutedAt   time.Time
}
