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

// CommunicationRepository implements port.CommunicationRepository
type CommunicationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommunicationRepository creates a new communication repository
func NewCommunicationRepository(db *sql.DB, logger *zap.Logger) port.CommunicationRepository {
	return &CommunicationRepository{db: db, logger: logger}
}

// Create appends one communication log row
func (r *CommunicationRepository) Create(ctx context.Context, comm *entity.ClientCommunication) error {
	query := `
		INSERT INTO client_communications (client_id, type, direction, subject, content)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		comm.ClientID, comm.Type, comm.Direction, comm.Subject, comm.Content,
	)
	if err != nil {
		r.logger.Error("Failed to create communication",
			zap.Int64("client_id", comm.ClientID),
			zap.String("type", comm.Type),
			zap.Error(err))
		return fmt.Errorf("failed to create communication: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comm.ID = id
	return nil
}

// ListByClient retrieves a client's communication history newest first
func (r *CommunicationRepository) ListByClient(ctx context.Context, clientID int64) ([]*entity.ClientCommunication, error) {
	query := `
		SELECT id, client_id, type, direction, subject, content, created_at
		FROM client_communications WHERE client_id = ? ORDER BY created_at DESC
	`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list communications: %w", err)
	}
	defer rows.Close()

	var comms []*entity.ClientCommunication
	for rows.Next() {
		var c entity.ClientCommunication
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Type, &c.Direction, &c.Subject, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan communication: %w", err)
		}
		comms = append(comms, &c)
	}
	return comms, rows.Err()
}

// Verify interface compliance
var _ port.CommunicationRepository = (*CommunicationRepository)(nil)
