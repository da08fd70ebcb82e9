package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pixelpine/studio-crm/internal/application/port"
)

// InvoiceExporter renders the invoice list as an Excel workbook for the
// studio's bookkeeping handoff.
type InvoiceExporter struct {
	invoiceRepo port.InvoiceRepository
	clientRepo  port.ClientRepository
	logger      *zap.Logger
}

// NewInvoiceExporter creates a new invoice exporter
func NewInvoiceExporter(invoiceRepo port.InvoiceRepository, clientRepo port.ClientRepository, logger *zap.Logger) *InvoiceExporter {
	return &InvoiceExporter{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		logger:      logger,
	}
}

const sheetName = "Invoices"

// WriteReport streams an xlsx workbook of up to limit invoices to w
func (e *InvoiceExporter) WriteReport(ctx context.Context, w io.Writer, limit int) error {
	invoices, err := e.invoiceRepo.List(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("load invoices: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Invoice #", "Client", "Status", "Amount", "Tax", "Total", "Due Date", "Created"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.setCell(f, cell, header)
	}

	clientNames := make(map[int64]string)
	var totalCents int64

	for i, invoice := range invoices {
		row := i + 2
		name, ok := clientNames[invoice.ClientID]
		if !ok {
			client, err := e.clientRepo.GetByID(ctx, invoice.ClientID)
			if err != nil {
				return fmt.Errorf("load client %d: %w", invoice.ClientID, err)
			}
			if client != nil {
				name = client.Name
			}
			clientNames[invoice.ClientID] = name
		}

		dueDate := ""
		if invoice.DueDate != nil {
			dueDate = invoice.DueDate.Format("2006-01-02")
		}

		values := []interface{}{
			invoice.InvoiceNumber,
			name,
			invoice.Status,
			dollars(invoice.AmountCents),
			dollars(invoice.TaxCents),
			dollars(invoice.TotalCents),
			dueDate,
			invoice.CreatedAt.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, cell, value)
		}
		totalCents += invoice.TotalCents
	}

	summaryRow := len(invoices) + 3
	e.setCell(f, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("%d invoices", len(invoices)))
	e.setCell(f, fmt.Sprintf("F%d", summaryRow), dollars(totalCents))

	if err := f.SetColWidth(sheetName, "A", "B", 24); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	e.logger.Info("Invoice report exported", zap.Int("invoice_count", len(invoices)))
	return nil
}

// setCell sets a cell value, logging rather than failing on errors
func (e *InvoiceExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}
