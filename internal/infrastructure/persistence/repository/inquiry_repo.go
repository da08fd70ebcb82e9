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

// InquiryRepository implements port.InquiryRepository
type InquiryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInquiryRepository creates a new inquiry repository
func NewInquiryRepository(db *sql.DB, logger *zap.Logger) port.InquiryRepository {
	return &InquiryRepository{db: db, logger: logger}
}

// Create inserts a new inquiry
func (r *InquiryRepository) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	query := `
		INSERT INTO inquiries (name, email, phone, company, project_type, budget, message, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := inquiry.Status
	if status == "" {
		status = entity.InquiryStatusNew
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Company,
		inquiry.ProjectType, inquiry.Budget, inquiry.Message, status,
	)
	if err != nil {
		r.logger.Error("Failed to create inquiry", zap.String("email", inquiry.Email), zap.Error(err))
		return fmt.Errorf("failed to create inquiry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	inquiry.ID = id
	inquiry.Status = status
	return nil
}

const inquiryColumns = `id, name, email, phone, company, project_type, budget, message, status, created_at`

func scanInquiry(row interface{ Scan(...interface{}) error }) (*entity.Inquiry, error) {
	var i entity.Inquiry
	err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Phone, &i.Company,
		&i.ProjectType, &i.Budget, &i.Message, &i.Status, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetByID retrieves an inquiry by id; returns nil when not found
func (r *InquiryRepository) GetByID(ctx context.Context, id int64) (*entity.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = ?`

	inquiry, err := scanInquiry(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	return inquiry, nil
}

// List retrieves inquiries newest first
func (r *InquiryRepository) List(ctx context.Context, limit, offset int) ([]*entity.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []*entity.Inquiry
	for rows.Next() {
		inquiry, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inquiry)
	}
	return inquiries, rows.Err()
}

// UpdateStatus updates only an inquiry's status
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE inquiries SET status = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update inquiry status", zap.Int64("inquiry_id", id), zap.Error(err))
		return fmt.Errorf("failed to update inquiry status: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.InquiryRepository = (*InquiryRepository)(nil)
