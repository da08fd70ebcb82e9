package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
	"github.com/pixelpine/studio-crm/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create inserts an unread notification with both sent flags down
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (client_id, type, title, message, priority, read, project_id, invoice_id, file_id, sent_via_email, sent_via_sms)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, 0, 0)
	`

	var projectID, invoiceID, fileID sql.NullInt64
	if notification.ProjectID != nil {
		projectID = sql.NullInt64{Int64: *notification.ProjectID, Valid: true}
	}
	if notification.InvoiceID != nil {
		invoiceID = sql.NullInt64{Int64: *notification.InvoiceID, Valid: true}
	}
	if notification.FileID != nil {
		fileID = sql.NullInt64{Int64: *notification.FileID, Valid: true}
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		notification.ClientID, notification.Type, notification.Title,
		notification.Message, notification.Priority, projectID, invoiceID, fileID,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.Int64("client_id", notification.ClientID),
			zap.String("type", notification.Type),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	notification.ID = id
	return nil
}

const notificationColumns = `id, client_id, type, title, message, priority, read, project_id, invoice_id, file_id, sent_via_email, email_sent_at, sent_via_sms, sms_sent_at, created_at`

func scanNotification(row interface{ Scan(...interface{}) error }) (*entity.Notification, error) {
	var n entity.Notification
	var projectID, invoiceID, fileID sql.NullInt64
	var emailSentAt, smsSentAt sql.NullTime

	err := row.Scan(
		&n.ID, &n.ClientID, &n.Type, &n.Title, &n.Message, &n.Priority, &n.Read,
		&projectID, &invoiceID, &fileID,
		&n.SentViaEmail, &emailSentAt, &n.SentViaSMS, &smsSentAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		n.ProjectID = &projectID.Int64
	}
	if invoiceID.Valid {
		n.InvoiceID = &invoiceID.Int64
	}
	if fileID.Valid {
		n.FileID = &fileID.Int64
	}
	if emailSentAt.Valid {
		n.EmailSentAt = &emailSentAt.Time
	}
	if smsSentAt.Valid {
		n.SMSSentAt = &smsSentAt.Time
	}
	return &n, nil
}

// GetByID retrieves a notification by id; returns nil when not found
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	notification, err := scanNotification(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return notification, nil
}

// ListByClient retrieves a client's notifications newest first
func (r *NotificationRepository) ListByClient(ctx context.Context, clientID int64, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE client_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

// MarkRead flips a notification to read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET read = 1 WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkEmailSent stamps the email sent flag with its timestamp
func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE notifications SET sent_via_email = 1, email_sent_at = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// MarkSMSSent stamps the SMS sent flag with its timestamp
func (r *NotificationRepository) MarkSMSSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `UPDATE notifications SET sent_via_sms = 1, sms_sent_at = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark sms sent: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
