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

// PaymentRepository implements port.PaymentRepository
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) port.PaymentRepository {
	return &PaymentRepository{db: db, logger: logger}
}

// Create inserts a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (invoice_id, amount_cents, status, method)
		VALUES (?, ?, ?, ?)
	`

	status := payment.Status
	if status == "" {
		status = entity.PaymentStatusPending
	}

	result, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query,
		payment.InvoiceID, payment.AmountCents, status, payment.Method,
	)
	if err != nil {
		r.logger.Error("Failed to create payment",
			zap.Int64("invoice_id", payment.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	payment.ID = id
	payment.Status = status
	return nil
}

const paymentColumns = `id, invoice_id, amount_cents, status, method, received_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Status, &p.Method, &p.ReceivedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a payment by id; returns nil when not found
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

	payment, err := scanPayment(sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// ListByInvoice retrieves all payments against an invoice
func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE invoice_id = ? ORDER BY received_at ASC`

	rows, err := sqlite.GetExecutor(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SumCompletedByInvoice totals the completed payments against an invoice
func (r *PaymentRepository) SumCompletedByInvoice(ctx context.Context, invoiceID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE invoice_id = ? AND status = 'completed'`

	var sum int64
	if err := sqlite.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, invoiceID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return sum, nil
}

// UpdateStatus updates only a payment's status
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE payments SET status = ? WHERE id = ?`

	_, err := sqlite.GetExecutor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update payment status", zap.Int64("payment_id", id), zap.Error(err))
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.PaymentRepository = (*PaymentRepository)(nil)
