package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePrinter struct {
	connected bool
	err       error
	printed   [][]byte
}

func (p *capturePrinter) Print(ctx context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.printed = append(p.printed, data)
	return nil
}

func (p *capturePrinter) IsConnected(ctx context.Context) bool { return p.connected }

func paidBill(t *testing.T) (*BillingService, *memStore, *entity.Bill) {
	t.Helper()
	svc, store, _ := newBillingFixture(3)
	bill := createBill(t, svc, seedCompletedAppointment(store, dentalServices()...))
	bill, err := svc.UpdateBill(context.Background(), bill.ID, 50000, enum.PaymentMethodGCash, "cashier", "")
	require.NoError(t, err)
	return svc, store, bill
}

func TestBuildReceipt(t *testing.T) {
	_, _, bill := paidBill(t)

	receipt := BuildReceipt(clinicHeader, bill)
	assert.Equal(t, BillNumber(bill), receipt.BillNo)
	assert.Len(t, receipt.BillNo, 8)
	assert.Equal(t, strings.ToUpper(receipt.BillNo), receipt.BillNo)
	assert.Equal(t, "PARTIAL", receipt.Status)
	assert.Equal(t, "₱1,160.00", receipt.Total)
	assert.Equal(t, "₱500.00", receipt.Paid)
	assert.Equal(t, "₱660.00", receipt.Outstanding)
	require.Len(t, receipt.Items, 2)
	assert.Equal(t, 2, receipt.Items[0].Quantity)
	assert.Equal(t, "₱180.00", receipt.Items[0].UnitPrice)
	assert.Equal(t, "₱360.00", receipt.Items[0].Subtotal)
	require.Len(t, receipt.Payments, 1)
	assert.Equal(t, "GCash", receipt.Payments[0].Method)
	assert.Equal(t, billingNow.Format(receiptDateLayout), receipt.Payments[0].Date)
}

func TestFormatReceiptIsPrintable(t *testing.T) {
	_, _, bill := paidBill(t)

	out := FormatReceipt(BuildReceipt(clinicHeader, bill))
	assert.True(t, bytes.HasPrefix(out, []byte{0x1B, 0x40}), "starts with printer init")
	assert.NotContains(t, string(out), "₱", "peso sign is transliterated for the printer")
	assert.Contains(t, string(out), "P1,160.00")
	assert.Contains(t, string(out), "DentaCare")
	assert.Contains(t, string(out), "Composite Filling")
}

func TestPrintBillReceipt(t *testing.T) {
	_, store, bill := paidBill(t)
	p := &capturePrinter{connected: true}
	svc := NewPrinterService(p, memBillRepo{store}, clinicHeader, "network")

	receipt, err := svc.PrintBillReceipt(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, BillNumber(bill), receipt.BillNo)
	require.Len(t, p.printed, 1)

	status := svc.GetStatus(context.Background())
	assert.Equal(t, &PrinterStatus{Configured: true, Connected: true, Type: "network"}, status)
}

func TestPrintBillReceiptReturnsReceiptOnPrinterFailure(t *testing.T) {
	_, store, bill := paidBill(t)
	svc := NewPrinterService(&capturePrinter{err: errors.New("paper out")}, memBillRepo{store}, clinicHeader, "usb")

	receipt, err := svc.PrintBillReceipt(context.Background(), bill.ID)
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, "₱660.00", receipt.Outstanding)
}

func TestTestPrint(t *testing.T) {
	p := &capturePrinter{}
	svc := NewPrinterService(p, memBillRepo{newMemStore()}, clinicHeader, "none")

	receipt, err := svc.TestPrint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TEST0001", receipt.BillNo)
	assert.Len(t, p.printed, 1)
	assert.False(t, svc.GetStatus(context.Background()).Configured)
}
