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

// ProjectRepository implements port.ProjectRepository
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) port.ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (client_id, package_id, name, project_type, status, target_completion, total_value_cents, deposit_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := project.Status
	if status == "" {
		status = "planning"
	}

	var packageID sql.NullInt64
	if project.PackageID != nil {
		packageID = sql.NullInt64{Int64: *project.PackageID, Valid: true}
	}
	var target sql.NullTime
	if project.TargetCompletion != nil {
		target = sql.NullTime{Time: *project.TargetCompletion, Valid: true}
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		project.ClientID, packageID, project.Name, project.Type, status,
		target, project.TotalValueCents, project.DepositCents,
	)
	if err != nil {
		r.logger.Error("Failed to create project",
			zap.Int64("client_id", project.ClientID),
			zap.String("name", project.Name),
			zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	project.ID = id
	project.Status = status
	return nil
}

const projectColumns = `id, client_id, package_id, name, project_type, status, start_date, target_completion, actual_completion, total_value_cents, deposit_cents, created_at, updated_at`

func scanProject(row interface{ Scan(...interface{}) error }) (*entity.Project, error) {
	var p entity.Project
	var packageID sql.NullInt64
	var startDate, targetCompletion, actualCompletion sql.NullTime

	err := row.Scan(
		&p.ID, &p.ClientID, &packageID, &p.Name, &p.Type, &p.Status,
		&startDate, &targetCompletion, &actualCompletion,
		&p.TotalValueCents, &p.DepositCents, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if packageID.Valid {
		p.PackageID = &packageID.Int64
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	if targetCompletion.Valid {
		p.TargetCompletion = &targetCompletion.Time
	}
	if actualCompletion.Valid {
		p.ActualCompletion = &actualCompletion.Time
	}
	return &p, nil
}

// GetByID retrieves a project by id; returns nil when not found
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListByClient retrieves all projects for a client
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID int64) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE client_id = ? ORDER BY created_at DESC`
	return r.queryProjects(ctx, query, clientID)
}

// List retrieves projects newest first
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryProjects(ctx, query, limit, offset)
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*entity.Project, error) {
	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Update updates a project's mutable fields
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	query := `
		UPDATE projects
		SET name = ?, project_type = ?, target_completion = ?,
		    total_value_cents = ?, deposit_cents = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	var target sql.NullTime
	if project.TargetCompletion != nil {
		target = sql.NullTime{Time: *project.TargetCompletion, Valid: true}
	}

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		project.Name, project.Type, target,
		project.TotalValueCents, project.DepositCents, project.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Int64("project_id", project.ID), zap.Error(err))
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// UpdateStatus updates only a project's status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update project status", zap.Int64("project_id", id), zap.Error(err))
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return nil
}

// SetStartDate stamps a project's start date
func (r *ProjectRepository) SetStartDate(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE projects SET start_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("failed to set start date: %w", err)
	}
	return nil
}

// SetActualCompletion stamps a project's actual completion time
func (r *ProjectRepository) SetActualCompletion(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE projects SET actual_completion = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("failed to set actual completion: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
