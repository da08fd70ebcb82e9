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

// FileRepository implements port.FileRepository
type FileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *sql.DB, logger *zap.Logger) port.FileRepository {
	return &FileRepository{db: db, logger: logger}
}

// Create inserts file metadata
func (r *FileRepository) Create(ctx context.Context, file *entity.ProjectFile) error {
	query := `
		INSERT INTO project_files (project_id, file_name, file_path, file_size, uploaded_by, is_public)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	uploadedBy := file.UploadedBy
	if uploadedBy == "" {
		uploadedBy = entity.FileUploadedByAdmin
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		file.ProjectID, file.FileName, file.FilePath, file.FileSize, uploadedBy, file.IsPublic,
	)
	if err != nil {
		r.logger.Error("Failed to create file record",
			zap.Int64("project_id", file.ProjectID),
			zap.String("file_name", file.FileName),
			zap.Error(err))
		return fmt.Errorf("failed to create file record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	file.ID = id
	file.UploadedBy = uploadedBy
	return nil
}

const fileColumns = `id, project_id, file_name, file_path, file_size, uploaded_by, is_public, created_at`

func scanFile(row interface{ Scan(...interface{}) error }) (*entity.ProjectFile, error) {
	var f entity.ProjectFile
	err := row.Scan(&f.ID, &f.ProjectID, &f.FileName, &f.FilePath, &f.FileSize,
		&f.UploadedBy, &f.IsPublic, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves file metadata by id; returns nil when not found
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*entity.ProjectFile, error) {
	query := `SELECT ` + fileColumns + ` FROM project_files WHERE id = ?`

	file, err := scanFile(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// ListByProject retrieves a project's files newest first
func (r *FileRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.ProjectFile, error) {
	query := `SELECT ` + fileColumns + ` FROM project_files WHERE project_id = ? ORDER BY created_at DESC`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*entity.ProjectFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Verify interface compliance
var _ port.FileRepository = (*FileRepository)(nil)
