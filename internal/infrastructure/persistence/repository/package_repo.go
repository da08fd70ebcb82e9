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

// PackageRepository implements port.PackageRepository
type PackageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPackageRepository creates a new package repository
func NewPackageRepository(db *sql.DB, logger *zap.Logger) port.PackageRepository {
	return &PackageRepository{db: db, logger: logger}
}

// GetByID retrieves a package by id; returns nil when not found
func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*entity.Package, error) {
	query := `SELECT id, name, project_type, price_cents, description, created_at FROM packages WHERE id = ?`

	var p entity.Package
	err := sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.ProjectType, &p.PriceCents, &p.Description, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	return &p, nil
}

// List retrieves all packages cheapest first
func (r *PackageRepository) List(ctx context.Context) ([]*entity.Package, error) {
	query := `SELECT id, name, project_type, price_cents, description, created_at FROM packages ORDER BY price_cents ASC`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.Package
	for rows.Next() {
		var p entity.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.ProjectType, &p.PriceCents, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, &p)
	}
	return packages, rows.Err()
}

// Verify interface compliance
var _ port.PackageRepository = (*PackageRepository)(nil)
