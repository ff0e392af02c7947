package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	billsSheet    = "Bills"
	paymentsSheet = "Payments"
	reportPage    = 100
	maxReportDays = 366
)

// ReportService exports billing data as spreadsheets
type ReportService struct {
	billRepo repository.BillRepository
	log      zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(billRepo repository.BillRepository) *ReportService {
	return &ReportService{
		billRepo: billRepo,
		log:      logger.WithComponent("reports"),
	}
}

// BillingReport is a generated workbook
type BillingReport struct {
	Filename string
	Content  []byte
	Bills    int
	Payments int
}

// GenerateBillingReport builds an XLSX workbook of the bills created and the
// payments posted between the from and to dates, both inclusive.
func (s *ReportService) GenerateBillingReport(ctx context.Context, from, to time.Time) (*BillingReport, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	if !end.After(start) {
		return nil, apperror.NewBadRequestError("from must not be after to")
	}
	if end.Sub(start) > maxReportDays*24*time.Hour {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("report range cannot exceed %d days", maxReportDays))
	}

	bills, err := s.collectBills(ctx, start, end)
	if err != nil {
		return nil, err
	}
	payments, err := s.billRepo.ListPayments(ctx, start, end)
	if err != nil {
		return nil, err
	}

	content, err := buildWorkbook(bills, payments)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	s.log.Info().
		Int("bills", len(bills)).
		Int("payments", len(payments)).
		Time("from", start).
		Time("to", end).
		Msg("billing report generated")

	return &BillingReport{
		Filename: fmt.Sprintf("billing-%s-to-%s.xlsx", start.Format("20060102"), to.Format("20060102")),
		Content:  content,
		Bills:    len(bills),
		Payments: len(payments),
	}, nil
}

func (s *ReportService) collectBills(ctx context.Context, start, end time.Time) ([]entity.Bill, error) {
	last := end.Add(-time.Nanosecond)
	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{Page: 1, PerPage: reportPage},
		StartDate:  &start,
		EndDate:    &last,
		SortBy:     "created_at",
		SortOrder:  "asc",
	}

	var all []entity.Bill
	for {
		page, total, err := s.billRepo.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		params.Pagination.Page++
	}
}

var (
	billHeaders    = []interface{}{"Bill No", "Created", "Patient", "Services", "Status", "Total", "Paid", "Outstanding", "Created By"}
	paymentHeaders = []interface{}{"Bill No", "Paid At", "Method", "Amount", "Processed By", "Notes"}
)

func buildWorkbook(bills []entity.Bill, payments []entity.PaymentHistory) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", billsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(paymentsSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0EBF5"}},
	})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	if err := writeHeader(f, billsSheet, billHeaders, headerStyle); err != nil {
		return nil, err
	}
	billNumbers := make(map[string]string, len(bills))
	for i := range bills {
		b := &bills[i]
		billNumbers[b.ID.String()] = BillNumber(b)

		row := []interface{}{
			BillNumber(b),
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.PatientName,
			serviceNames(b.Items),
			string(b.Status),
			money.Float(b.TotalAmount),
			money.Float(b.PaidAmount),
			money.Float(b.OutstandingBalance()),
			b.CreatedBy,
		}
		if err := writeRow(f, billsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := writeTotals(f, billsSheet, len(bills), []string{"F", "G", "H"}, amountStyle); err != nil {
		return nil, err
	}

	if err := writeHeader(f, paymentsSheet, paymentHeaders, headerStyle); err != nil {
		return nil, err
	}
	for i, p := range payments {
		billNo, ok := billNumbers[p.BillID.String()]
		if !ok {
			billNo = BillNumber(&entity.Bill{ID: p.BillID})
		}
		row := []interface{}{
			billNo,
			p.PaidAt.Format("2006-01-02 15:04"),
			p.PaymentMethod.Label(),
			money.Float(p.Amount),
			p.ProcessedBy,
			p.Notes,
		}
		if err := writeRow(f, paymentsSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	if err := writeTotals(f, paymentsSheet, len(payments), []string{"D"}, amountStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// writeTotals adds a SUM row under the data for each amount column.
func writeTotals(f *excelize.File, sheet string, rows int, columns []string, style int) error {
	totalRow := rows + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "TOTAL"); err != nil {
		return err
	}
	for _, col := range columns {
		if rows > 0 {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, rows+1)
			if err := f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, totalRow), formula); err != nil {
				return err
			}
		} else if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, totalRow), 0); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, totalRow), style); err != nil {
			return err
		}
	}
	return nil
}

func serviceNames(items []entity.BillItem) string {
	var b bytes.Buffer
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.ServiceName)
		if item.Quantity > 1 {
			fmt.Fprintf(&b, " x%d", item.Quantity)
		}
	}
	return b.String()
}
