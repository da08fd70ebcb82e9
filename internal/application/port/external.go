package port

import (
	"context"
	"time"
)

// SendResult is the structured outcome of an email provider call.
// Failures are reported here rather than as panics.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// EmailSender defines the transactional email collaborator
type EmailSender interface {
	// SendContactConfirmation thanks an inquiry submitter
	SendContactConfirmation(ctx context.Context, toEmail, toName string) *SendResult

	// SendAdminAlert notifies the operator address about a new inquiry
	SendAdminAlert(ctx context.Context, inquiryName, inquiryEmail, message string) *SendResult

	// SendClientInvitation sends portal credentials to a new client
	SendClientInvitation(ctx context.Context, toEmail, toName, tempPassword, loginURL string) *SendResult
}

// Notifier is the workflow engine's view of the notification dispatcher.
// Implementations persist an in-app notification and, for the important
// subset, mirror it to email; failures are reported but non-fatal to the
// calling workflow.
type Notifier interface {
	NotifyProjectUpdate(ctx context.Context, clientID, projectID int64, projectName, oldStatus, newStatus string) error
	NotifyProjectReview(ctx context.Context, clientID, projectID int64, projectName string) error
	NotifyProjectCompleted(ctx context.Context, clientID, projectID int64, projectName string) error
	NotifyMilestoneCompleted(ctx context.Context, clientID, projectID int64, projectName, milestoneTitle string) error
	NotifyInvoiceSent(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, totalCents int64, dueDate *time.Time) error
	NotifyPaymentReceived(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, amountCents int64) error
	NotifyFileShared(ctx context.Context, clientID, projectID, fileID int64, fileName string) error
}
