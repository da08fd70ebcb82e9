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

// MilestoneRepository implements port.MilestoneRepository
type MilestoneRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(db *sql.DB, logger *zap.Logger) port.MilestoneRepository {
	return &MilestoneRepository{db: db, logger: logger}
}

// Create inserts a single milestone
func (r *MilestoneRepository) Create(ctx context.Context, milestone *entity.Milestone) error {
	query := `
		INSERT INTO project_milestones (project_id, title, description, sort_order, status, due_date, requires_client_action, client_approved)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var dueDate sql.NullTime
	if milestone.DueDate != nil {
		dueDate = sql.NullTime{Time: *milestone.DueDate, Valid: true}
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		milestone.ProjectID, milestone.Title, milestone.Description,
		milestone.SortOrder, milestone.Status, dueDate,
		milestone.RequiresClientAction, milestone.ClientApproved,
	)
	if err != nil {
		r.logger.Error("Failed to create milestone",
			zap.Int64("project_id", milestone.ProjectID),
			zap.String("title", milestone.Title),
			zap.Error(err))
		return fmt.Errorf("failed to create milestone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	milestone.ID = id
	return nil
}

// CreateBatch inserts milestones in order. Callers wrap this in a
// transaction when atomicity matters.
func (r *MilestoneRepository) CreateBatch(ctx context.Context, milestones []*entity.Milestone) error {
	for _, milestone := range milestones {
		if err := r.Create(ctx, milestone); err != nil {
			return err
		}
	}
	return nil
}

const milestoneColumns = `id, project_id, title, description, sort_order, status, due_date, requires_client_action, client_approved, completed_at, created_at`

func scanMilestone(row interface{ Scan(...interface{}) error }) (*entity.Milestone, error) {
	var m entity.Milestone
	var dueDate, completedAt sql.NullTime

	err := row.Scan(
		&m.ID, &m.ProjectID, &m.Title, &m.Description, &m.SortOrder, &m.Status,
		&dueDate, &m.RequiresClientAction, &m.ClientApproved, &completedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		m.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		m.CompletedAt = &completedAt.Time
	}
	return &m, nil
}

// GetByID retrieves a milestone by id; returns nil when not found
func (r *MilestoneRepository) GetByID(ctx context.Context, id int64) (*entity.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM project_milestones WHERE id = ?`

	milestone, err := scanMilestone(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return milestone, nil
}

// GetByProjectAndTitle retrieves a milestone by its project and title.
// Titles act as idempotency keys for engine-created milestones.
func (r *MilestoneRepository) GetByProjectAndTitle(ctx context.Context, projectID int64, title string) (*entity.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM project_milestones WHERE project_id = ? AND title = ? LIMIT 1`

	milestone, err := scanMilestone(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, projectID, title))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone by title: %w", err)
	}
	return milestone, nil
}

// ListByProject retrieves a project's milestones in sort order
func (r *MilestoneRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Milestone, error) {
	query := `SELECT ` + milestoneColumns + ` FROM project_milestones WHERE project_id = ? ORDER BY sort_order ASC`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*entity.Milestone
	for rows.Next() {
		milestone, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, milestone)
	}
	return milestones, rows.Err()
}

// CountByProject aggregates total and completed milestone counts
func (r *MilestoneRepository) CountByProject(ctx context.Context, projectID int64) (port.MilestoneCounts, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM project_milestones WHERE project_id = ?
	`

	var counts port.MilestoneCounts
	err := sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, projectID).
		Scan(&counts.Total, &counts.Completed)
	if err != nil {
		return counts, fmt.Errorf("failed to count milestones: %w", err)
	}
	return counts, nil
}

// UpdateStatus updates only a milestone's status
func (r *MilestoneRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE project_milestones SET status = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update milestone status", zap.Int64("milestone_id", id), zap.Error(err))
		return fmt.Errorf("failed to update milestone status: %w", err)
	}
	return nil
}

// MarkCompleted flips a milestone to completed with a timestamp
func (r *MilestoneRepository) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) error {
	query := `UPDATE project_milestones SET status = 'completed', completed_at = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark milestone completed: %w", err)
	}
	return nil
}

// CompleteAllOpen force-completes every non-completed milestone of a project
func (r *MilestoneRepository) CompleteAllOpen(ctx context.Context, projectID int64, completedAt time.Time) error {
	query := `
		UPDATE project_milestones SET status = 'completed', completed_at = ?
		WHERE project_id = ? AND status <> 'completed'
	`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, completedAt, projectID)
	if err != nil {
		return fmt.Errorf("failed to complete open milestones: %w", err)
	}
	return nil
}

// ResetInProgress moves every in_progress milestone of a project back to pending
func (r *MilestoneRepository) ResetInProgress(ctx context.Context, projectID int64) error {
	query := `UPDATE project_milestones SET status = 'pending' WHERE project_id = ? AND status = 'in_progress'`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, projectID)
	if err != nil {
		return fmt.Errorf("failed to reset in-progress milestones: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.MilestoneRepository = (*MilestoneRepository)(nil)
