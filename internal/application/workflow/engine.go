package workflow

import (
	"context"

	"github.com/pixelpine/studio-crm/internal/domain/event"
	"github.com/pixelpine/studio-crm/internal/domain/lifecycle"
)

// Engine reacts to domain events with the project lifecycle side effects:
// milestone seeding, status cascades, auto-invoicing and notification
// dispatch. Every entry point writes one audit log row when it reaches its
// entity; entity-not-found returns a skipped result with no row.
type Engine interface {
	// HandleEvent routes a domain event to the matching entry point
	HandleEvent(ctx context.Context, evt *event.Event) error

	// OnProjectStatusChange validates and applies a status transition,
	// persisting the new status and running the per-status side effects
	OnProjectStatusChange(ctx context.Context, projectID int64, oldStatus, newStatus lifecycle.State) *Result

	// OnMilestoneCompleted reacts to a milestone reaching completed
	OnMilestoneCompleted(ctx context.Context, milestoneID int64) *Result

	// OnInvoiceCreated reacts to a new invoice record
	OnInvoiceCreated(ctx context.Context, invoiceID int64) *Result

	// OnPaymentReceived settles an invoice when completed payments cover it
	OnPaymentReceived(ctx context.Context, paymentID int64) *Result

	// OnFileUploaded notifies the client about shared files
	OnFileUploaded(ctx context.Context, fileID int64, uploadedBy string) *Result
}

// Config holds the billing knobs the engine needs for auto-invoicing
type Config struct {
	TaxRate        float64
	InvoiceDueDays int
}
