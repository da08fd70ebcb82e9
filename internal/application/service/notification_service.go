package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

// NotificationData is the input for creating one in-app notification
type NotificationData struct {
	ClientID  int64
	Type      string
	Title     string
	Message   string
	Priority  string
	ProjectID *int64
	InvoiceID *int64
	FileID    *int64
}

// NotificationService persists in-app notifications and mirrors the
// important subset to the client's enabled channels. Email and SMS sends
// for workflow notifications are logged rather than delivered; the real
// provider calls live in the transactional email client.
type NotificationService struct {
	clientRepo       port.ClientRepository
	notificationRepo port.NotificationRepository
	commRepo         port.CommunicationRepository
	logger           *zap.Logger

	now func() time.Time
}

var _ port.Notifier = (*NotificationService)(nil)

// NewNotificationService creates a new notification service
func NewNotificationService(
	clientRepo port.ClientRepository,
	notificationRepo port.NotificationRepository,
	commRepo port.CommunicationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		clientRepo:       clientRepo,
		notificationRepo: notificationRepo,
		commRepo:         commRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// CreateNotification inserts one unread notification with both sent flags
// down. The dispatcher is the only writer of the sent flags.
func (s *NotificationService) CreateNotification(ctx context.Context, data NotificationData) (*entity.Notification, error) {
	notification := &entity.Notification{
		ClientID:  data.ClientID,
		Type:      data.Type,
		Title:     data.Title,
		Message:   data.Message,
		Priority:  data.Priority,
		ProjectID: data.ProjectID,
		InvoiceID: data.InvoiceID,
		FileID:    data.FileID,
	}
	if notification.Priority == "" {
		notification.Priority = entity.PriorityNormal
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return notification, nil
}

// SendEmailNotification mirrors a notification to the client's email
// channel. Returns false without side effects when the client is missing,
// has no email address, or has email notifications disabled. A successful
// send appends one outbound communication row and, when a notification id
// is supplied, stamps sent_via_email.
func (s *NotificationService) SendEmailNotification(ctx context.Context, clientID int64, subject, content string, notificationID *int64) (bool, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return false, fmt.Errorf("load client: %w", err)
	}
	if client == nil || client.Email == "" || !client.EmailNotifications {
		return false, nil
	}

	// Workflow emails are recorded, not delivered through the provider.
	s.logger.Info("Email notification dispatched",
		zap.Int64("client_id", clientID),
		zap.String("to", client.Email),
		zap.String("subject", subject))

	if err := s.commRepo.Create(ctx, &entity.ClientCommunication{
		ClientID:  clientID,
		Type:      entity.CommunicationTypeEmail,
		Direction: entity.DirectionOutbound,
		Subject:   subject,
		Content:   content,
	}); err != nil {
		return false, fmt.Errorf("record communication: %w", err)
	}

	if notificationID != nil {
		if err := s.notificationRepo.MarkEmailSent(ctx, *notificationID, s.now()); err != nil {
			return false, fmt.Errorf("mark email sent: %w", err)
		}
	}
	return true, nil
}

// SendSMSNotification mirrors a notification to SMS, gated on the client
// having SMS enabled and a phone number on file.
func (s *NotificationService) SendSMSNotification(ctx context.Context, clientID int64, content string, notificationID *int64) (bool, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return false, fmt.Errorf("load client: %w", err)
	}
	if client == nil || client.Phone == "" || !client.SMSNotifications {
		return false, nil
	}

	s.logger.Info("SMS notification dispatched",
		zap.Int64("client_id", clientID),
		zap.String("to", client.Phone))

	if err := s.commRepo.Create(ctx, &entity.ClientCommunication{
		ClientID:  clientID,
		Type:      entity.CommunicationTypeSMS,
		Direction: entity.DirectionOutbound,
		Content:   content,
	}); err != nil {
		return false, fmt.Errorf("record communication: %w", err)
	}

	if notificationID != nil {
		if err := s.notificationRepo.MarkSMSSent(ctx, *notificationID, s.now()); err != nil {
			return false, fmt.Errorf("mark sms sent: %w", err)
		}
	}
	return true, nil
}

// notifyWithEmail creates the in-app notification and mirrors it to email
func (s *NotificationService) notifyWithEmail(ctx context.Context, data NotificationData, subject, body string) error {
	notification, err := s.CreateNotification(ctx, data)
	if err != nil {
		return err
	}

	if _, err := s.SendEmailNotification(ctx, data.ClientID, subject, body, &notification.ID); err != nil {
		return err
	}
	return nil
}

// NotifyProjectUpdate records a project status change for the client
func (s *NotificationService) NotifyProjectUpdate(ctx context.Context, clientID, projectID int64, projectName, oldStatus, newStatus string) error {
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeProjectUpdate,
		Title:     fmt.Sprintf("Project update: %s", projectName),
		Message:   fmt.Sprintf("Your project %q moved from %s to %s.", projectName, oldStatus, newStatus),
		Priority:  entity.PriorityNormal,
		ProjectID: &projectID,
	},
		fmt.Sprintf("Update on your project: %s", projectName),
		fmt.Sprintf("Hi! Your project %q has a new status: %s. Log in to the portal for details.", projectName, newStatus),
	)
}

// NotifyProjectReview asks the client to review the staged work
func (s *NotificationService) NotifyProjectReview(ctx context.Context, clientID, projectID int64, projectName string) error {
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeProjectReview,
		Title:     fmt.Sprintf("Ready for your review: %s", projectName),
		Message:   fmt.Sprintf("Your project %q is ready for review. Please approve or request changes.", projectName),
		Priority:  entity.PriorityHigh,
		ProjectID: &projectID,
	},
		fmt.Sprintf("Your project %s is ready for review", projectName),
		fmt.Sprintf("We've staged %q for you. Please review it and approve or request changes in the portal.", projectName),
	)
}

// NotifyProjectCompleted congratulates the client on launch
func (s *NotificationService) NotifyProjectCompleted(ctx context.Context, clientID, projectID int64, projectName string) error {
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeProjectCompleted,
		Title:     fmt.Sprintf("Project completed: %s", projectName),
		Message:   fmt.Sprintf("Your project %q is complete. Thank you for working with us!", projectName),
		Priority:  entity.PriorityHigh,
		ProjectID: &projectID,
	},
		fmt.Sprintf("%s is complete!", projectName),
		fmt.Sprintf("Your project %q has launched. We'd love your feedback.", projectName),
	)
}

// NotifyMilestoneCompleted records milestone progress for the client
func (s *NotificationService) NotifyMilestoneCompleted(ctx context.Context, clientID, projectID int64, projectName, milestoneTitle string) error {
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeMilestoneCompleted,
		Title:     fmt.Sprintf("Milestone completed: %s", milestoneTitle),
		Message:   fmt.Sprintf("The milestone %q on project %q is complete.", milestoneTitle, projectName),
		Priority:  entity.PriorityNormal,
		ProjectID: &projectID,
	},
		fmt.Sprintf("Progress on %s", projectName),
		fmt.Sprintf("Good news: the milestone %q on your project %q is complete.", milestoneTitle, projectName),
	)
}

// NotifyInvoiceSent tells the client a new invoice is waiting
func (s *NotificationService) NotifyInvoiceSent(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, totalCents int64, dueDate *time.Time) error {
	due := "on receipt"
	if dueDate != nil {
		due = dueDate.Format("January 2, 2006")
	}
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeInvoiceSent,
		Title:     fmt.Sprintf("Invoice %s", invoiceNumber),
		Message:   fmt.Sprintf("Invoice %s for %s is due %s.", invoiceNumber, formatCents(totalCents), due),
		Priority:  entity.PriorityHigh,
		InvoiceID: &invoiceID,
	},
		fmt.Sprintf("Invoice %s from Pixel & Pine Studio", invoiceNumber),
		fmt.Sprintf("Invoice %s for %s is ready. Payment is due %s.", invoiceNumber, formatCents(totalCents), due),
	)
}

// NotifyPaymentReceived confirms a settled invoice
func (s *NotificationService) NotifyPaymentReceived(ctx context.Context, clientID, invoiceID int64, invoiceNumber string, amountCents int64) error {
	return s.notifyWithEmail(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypePaymentReceived,
		Title:     fmt.Sprintf("Payment received for %s", invoiceNumber),
		Message:   fmt.Sprintf("We received your payment of %s. Invoice %s is settled.", formatCents(amountCents), invoiceNumber),
		Priority:  entity.PriorityNormal,
		InvoiceID: &invoiceID,
	},
		fmt.Sprintf("Payment received for invoice %s", invoiceNumber),
		fmt.Sprintf("Thank you! We received %s and invoice %s is now paid in full.", formatCents(amountCents), invoiceNumber),
	)
}

// NotifyFileShared records a shared file. In-app only, no email mirror.
func (s *NotificationService) NotifyFileShared(ctx context.Context, clientID, projectID, fileID int64, fileName string) error {
	_, err := s.CreateNotification(ctx, NotificationData{
		ClientID:  clientID,
		Type:      entity.NotificationTypeFileShared,
		Title:     "New file shared with you",
		Message:   fmt.Sprintf("The file %q was shared to your project portal.", fileName),
		Priority:  entity.PriorityLow,
		ProjectID: &projectID,
		FileID:    &fileID,
	})
	return err
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
