// Package report renders application data into downloadable workbooks.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/madadhq/invoice-financing/internal/application/service"
)

// ApplicationExporter writes application listings as XLSX workbooks
type ApplicationExporter struct {
	logger *zap.Logger
}

// NewApplicationExporter creates a new application exporter
func NewApplicationExporter(logger *zap.Logger) *ApplicationExporter {
	return &ApplicationExporter{logger: logger}
}

var exportHeaders = []string{
	"ID", "MSME", "MSME Email", "Buyer", "Lender", "Program",
	"Credit Score", "Monthly Avg Transaction", "Assigned Limit",
	"Interest Rate", "Tenure", "Invoice Amount", "Funded Amount",
	"Repaid", "Status", "Created At",
}

// Export renders the views into a single-sheet workbook and returns
// the serialized file
func (e *ApplicationExporter) Export(views []*service.ApplicationView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Applications"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		e.setCell(f, sheet, cell, h)
	}
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", endCell, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, v := range views {
		row := i + 2
		values := []interface{}{
			v.ID,
			v.MSME.Name,
			v.MSME.Email,
			v.Buyer.Name,
			v.AssignedLender.Name,
			v.AssignedLender.ProgramCode,
			v.CreditScore,
			v.MonthlyAvgTxn,
			v.AssignedLimit,
			v.InterestRate,
			v.Tenure,
			v.InvoiceAmount,
			v.FundedAmount,
			v.IsRepaid,
			v.Status,
			v.CreatedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			e.setCell(f, sheet, cell, value)
		}
	}

	if err := f.SetColWidth(sheet, "A", "P", 18); err != nil {
		e.logger.Warn("Failed to set column widths", zap.Error(err))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	e.logger.Info("Exported applications workbook", zap.Int("rows", len(views)))
	return buf.Bytes(), nil
}

func (e *ApplicationExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
