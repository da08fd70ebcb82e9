package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
	"github.com/pixelpine/studio-crm/internal/domain/entity"
	"github.com/pixelpine/studio-crm/internal/infrastructure/persistence/sqlite"
)

// ClientRepository implements port.ClientRepository
type ClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB, logger *zap.Logger) port.ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	query := `
		INSERT INTO clients (name, email, phone, company, status, email_notifications, sms_notifications, preferred_contact_window)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := client.Status
	if status == "" {
		status = entity.ClientStatusActive
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		client.Name, client.Email, client.Phone, client.Company,
		status, client.EmailNotifications, client.SMSNotifications, client.PreferredContactWindow,
	)
	if err != nil {
		r.logger.Error("Failed to create client", zap.String("email", client.Email), zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	client.ID = id
	client.Status = status
	return nil
}

const clientColumns = `id, name, email, phone, company, status, email_notifications, sms_notifications, preferred_contact_window, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Status,
		&c.EmailNotifications, &c.SMSNotifications, &c.PreferredContactWindow,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a client by id; returns nil when not found
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// GetByEmail retrieves a client by email; returns nil when not found
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = ? LIMIT 1`

	client, err := scanClient(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}
	return client, nil
}

// List retrieves clients newest first
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// Update updates a client's mutable fields
func (r *ClientRepository) Update(ctx context.Context, client *entity.Client) error {
	query := `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, company = ?, status = ?,
		    email_notifications = ?, sms_notifications = ?, preferred_contact_window = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		client.Name, client.Email, client.Phone, client.Company, client.Status,
		client.EmailNotifications, client.SMSNotifications, client.PreferredContactWindow,
		client.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update client", zap.Int64("client_id", client.ID), zap.Error(err))
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// UpdateStatus updates only a client's status
func (r *ClientRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE clients SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update client status", zap.Int64("client_id", id), zap.Error(err))
		return fmt.Errorf("failed to update client status: %w", err)
	}
	return nil
}

// Delete hard-deletes a client row
func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM clients WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete client", zap.Int64("client_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.ClientRepository = (*ClientRepository)(nil)
