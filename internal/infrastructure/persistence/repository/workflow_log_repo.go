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

// WorkflowLogRepository implements port.WorkflowLogRepository
type WorkflowLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowLogRepository creates a new workflow log repository
func NewWorkflowLogRepository(db *sql.DB, logger *zap.Logger) port.WorkflowLogRepository {
	return &WorkflowLogRepository{db: db, logger: logger}
}

// Create appends one audit row. Rows are never updated or deleted.
func (r *WorkflowLogRepository) Create(ctx context.Context, log *entity.WorkflowLog) error {
	query := `
		INSERT INTO workflow_logs (resource_id, workflow_type, metadata, executed_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		log.ResourceID, log.WorkflowType, log.Metadata, log.ExecutedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create workflow log",
			zap.Int64("resource_id", log.ResourceID),
			zap.String("workflow_type", log.WorkflowType),
			zap.Error(err))
		return fmt.Errorf("failed to create workflow log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	log.ID = id
	return nil
}

// ListByResource retrieves the audit trail for one resource, oldest first
func (r *WorkflowLogRepository) ListByResource(ctx context.Context, resourceID int64, workflowType string) ([]*entity.WorkflowLog, error) {
	query := `
		SELECT id, resource_id, workflow_type, metadata, executed_at
		FROM workflow_logs WHERE resource_id = ? AND workflow_type = ?
		ORDER BY executed_at ASC
	`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, resourceID, workflowType)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.WorkflowLog
	for rows.Next() {
		var l entity.WorkflowLog
		if err := rows.Scan(&l.ID, &l.ResourceID, &l.WorkflowType, &l.Metadata, &l.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workflow log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// Verify interface compliance
var _ port.WorkflowLogRepository = (*WorkflowLogRepository)(nil)
