package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/printer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	billRepo    repository.BillRepository
	header      entity.ReceiptHeader
	printerType string
	log         zerolog.Logger
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	billRepo repository.BillRepository,
	header entity.ReceiptHeader,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		billRepo:    billRepo,
		header:      header,
		printerType: printerType,
		log:         logger.WithComponent("printer"),
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.printerType,
	}
}

// TestPrint sends a sample receipt to the printer and returns it.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header:  s.header,
		BillNo:  "TEST0001",
		Date:    time.Now().Format(receiptDateLayout),
		Patient: "Printer Test",
		Status:  "PAID",
		Items: []entity.ReceiptItem{
			{Name: "Oral Prophylaxis", Quantity: 1, UnitPrice: "₱800.00", Subtotal: "₱800.00"},
			{Name: "Composite Filling", Detail: "Teeth: 11, 12", Quantity: 2, UnitPrice: "₱180.00", Subtotal: "₱360.00"},
		},
		Total:       "₱1,160.00",
		Paid:        "₱1,160.00",
		Outstanding: "₱0.00",
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt)); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}
	return receipt, nil
}

// PrintBillReceipt prints the current state of a bill. The receipt is
// returned even when printing fails so the client can render it instead.
func (s *PrinterService) PrintBillReceipt(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	receipt := BuildReceipt(s.header, bill)
	if err := s.printer.Print(ctx, FormatReceipt(receipt)); err != nil {
		s.log.Error().Err(err).Str("bill_id", billID.String()).Msg("receipt print failed")
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}
	return receipt, nil
}
