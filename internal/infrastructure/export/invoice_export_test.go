package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/domain/entity"
)

type fixedInvoiceRepo struct {
	invoices []*entity.Invoice
}

func (r *fixedInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error { return nil }
func (r *fixedInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	return nil, nil
}
func (r *fixedInvoiceRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Invoice, error) {
	return nil, nil
}
func (r *fixedInvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	return r.invoices, nil
}
func (r *fixedInvoiceRepo) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return 0, nil
}
func (r *fixedInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return nil
}
func (r *fixedInvoiceRepo) MarkPaid(ctx context.Context, id int64) (bool, error) { return false, nil }

type fixedClientRepo struct {
	clients map[int64]*entity.Client
}

func (r *fixedClientRepo) Create(ctx context.Context, client *entity.Client) error { return nil }
func (r *fixedClientRepo) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	return r.clients[id], nil
}
func (r *fixedClientRepo) GetByEmail(ctx context.Context, email string) (*entity.Client, error) {
	return nil, nil
}
func (r *fixedClientRepo) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	return nil, nil
}
func (r *fixedClientRepo) Update(ctx context.Context, client *entity.Client) error        { return nil }
func (r *fixedClientRepo) UpdateStatus(ctx context.Context, id int64, status string) error { return nil }
func (r *fixedClientRepo) Delete(ctx context.Context, id int64) error                      { return nil }

func TestWriteReport(t *testing.T) {
	due := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)
	invoices := &fixedInvoiceRepo{invoices: []*entity.Invoice{
		{
			ID: 1, ClientID: 10, InvoiceNumber: "INV-20260315-AAAA1111",
			Status: entity.InvoiceStatusSent, AmountCents: 250000, TaxCents: 21250,
			TotalCents: 271250, DueDate: &due,
			CreatedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, ClientID: 10, InvoiceNumber: "INV-20260316-BBBB2222",
			Status: entity.InvoiceStatusPaid, AmountCents: 100000, TaxCents: 8500,
			TotalCents: 108500,
			CreatedAt:  time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC),
		},
	}}
	clients := &fixedClientRepo{clients: map[int64]*entity.Client{
		10: {ID: 10, Name: "Ada LLC"},
	}}

	exporter := NewInvoiceExporter(invoices, clients, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteReport(context.Background(), &buf, 100))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		value, err := f.GetCellValue("Invoices", cell)
		require.NoError(t, err)
		return value
	}

	assert.Equal(t, "Invoice #", get("A1"))
	assert.Equal(t, "INV-20260315-AAAA1111", get("A2"))
	assert.Equal(t, "Ada LLC", get("B2"))
	assert.Equal(t, "sent", get("C2"))
	assert.Equal(t, "2712.5", get("F2"))
	assert.Equal(t, "2026-04-14", get("G2"))
	assert.Equal(t, "", get("G3"), "missing due date renders empty")
	assert.Equal(t, "2 invoices", get("A5"))
	assert.Equal(t, "3797.5", get("F5"))
}
