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

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create inserts an invoice and its line items. The unique index on
// invoice_number surfaces collisions as an error; callers retry with a
// fresh number.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (project_id, client_id, invoice_number, status, amount_cents, tax_cents, total_cents, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := invoice.Status
	if status == "" {
		status = entity.InvoiceStatusDraft
	}
	var dueDate sql.NullTime
	if invoice.DueDate != nil {
		dueDate = sql.NullTime{Time: *invoice.DueDate, Valid: true}
	}

	exec := sqlite.GetExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, query,
		invoice.ProjectID, invoice.ClientID, invoice.InvoiceNumber, status,
		invoice.AmountCents, invoice.TaxCents, invoice.TotalCents, dueDate,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.Int64("project_id", invoice.ProjectID),
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	invoice.ID = id
	invoice.Status = status

	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		item.InvoiceID = id
		lineResult, err := exec.ExecContext(ctx,
			`INSERT INTO invoice_line_items (invoice_id, description, quantity, rate_cents, amount_cents, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			item.InvoiceID, item.Description, item.Quantity, item.RateCents, item.AmountCents, item.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to create invoice line item: %w", err)
		}
		if item.ID, err = lineResult.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get line item id: %w", err)
		}
	}
	return nil
}

const invoiceColumns = `id, project_id, client_id, invoice_number, status, amount_cents, tax_cents, total_cents, due_date, created_at, updated_at`

func scanInvoice(row interface{ Scan(...interface{}) error }) (*entity.Invoice, error) {
	var inv entity.Invoice
	var dueDate sql.NullTime

	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.ClientID, &inv.InvoiceNumber, &inv.Status,
		&inv.AmountCents, &inv.TaxCents, &inv.TotalCents, &dueDate,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}
	return &inv, nil
}

// GetByID retrieves an invoice with its line items; returns nil when not found
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

	exec := sqlite.GetExecutor(ctx, r.db)
	invoice, err := scanInvoice(exec.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	rows, err := exec.QueryContext(ctx,
		`SELECT id, invoice_id, description, quantity, rate_cents, amount_cents, sort_order
		 FROM invoice_line_items WHERE invoice_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.InvoiceLineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description,
			&item.Quantity, &item.RateCents, &item.AmountCents, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		invoice.LineItems = append(invoice.LineItems, item)
	}
	return invoice, rows.Err()
}

// ListByProject retrieves all invoices for a project
func (r *InvoiceRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE project_id = ? ORDER BY created_at DESC`
	return r.queryInvoices(ctx, query, projectID)
}

// List retrieves invoices newest first
func (r *InvoiceRepository) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC LIMIT ? OFFSET ?`
	return r.queryInvoices(ctx, query, limit, offset)
}

func (r *InvoiceRepository) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

// CountByProject counts invoices belonging to a project
func (r *InvoiceRepository) CountByProject(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE project_id = ?`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

// UpdateStatus updates only an invoice's status
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update invoice status", zap.Int64("invoice_id", id), zap.Error(err))
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return nil
}

// MarkPaid conditionally flips an invoice to paid. The WHERE guard makes
// the flip atomic: concurrent settlements see the transition fire once.
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE invoices SET status = 'paid', updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status <> 'paid'`

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark invoice paid", zap.Int64("invoice_id", id), zap.Error(err))
		return false, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
