package service

import (
	"strings"

	"github.com/dentacare/clinic-api/internal/domain/billing"
	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/config"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/dentacare/clinic-api/pkg/printer"
)

const receiptDateLayout = "Jan 2, 2006 3:04 PM"

// ReceiptHeaderFromConfig builds the clinic header printed on receipts.
func ReceiptHeaderFromConfig(cfg *config.BillingConfig) entity.ReceiptHeader {
	return entity.ReceiptHeader{
		ClinicName: cfg.ClinicName,
		Address:    cfg.ClinicAddress,
		Phone:      cfg.ClinicPhone,
		TIN:        cfg.ClinicTIN,
	}
}

// BillNumber is the short reference printed on receipts and messages.
func BillNumber(bill *entity.Bill) string {
	return strings.ToUpper(bill.ID.String()[:8])
}

// BuildReceipt composes a receipt from a bill.
func BuildReceipt(header entity.ReceiptHeader, bill *entity.Bill) *entity.Receipt {
	view := billing.Present(bill)
	receipt := &entity.Receipt{
		Header:      header,
		BillNo:      BillNumber(bill),
		Date:        bill.CreatedAt.Format(receiptDateLayout),
		Patient:     bill.PatientName,
		Status:      strings.ToUpper(view.Status),
		Items:       make([]entity.ReceiptItem, 0, len(view.Items)),
		Payments:    make([]entity.ReceiptPayment, 0, len(bill.PaymentHistory)),
		Total:       view.Total,
		Paid:        view.Paid,
		Outstanding: view.Outstanding,
	}

	for _, item := range view.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      item.ServiceName,
			Detail:    item.Description,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	for _, p := range bill.PaymentHistory {
		receipt.Payments = append(receipt.Payments, entity.ReceiptPayment{
			Date:   p.PaidAt.Format(receiptDateLayout),
			Method: p.PaymentMethod.Label(),
			Amount: money.FormatPeso(p.Amount),
			Notes:  p.Notes,
		})
	}
	return receipt
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(32) // 58mm paper

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ClinicName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Wrapped("", r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}
	if r.Header.TIN != "" {
		doc.TextF("TIN: %s", r.Header.TIN)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Bill:", r.BillNo).
		KeyValue("Date:", r.Date).
		KeyValue("Patient:", r.Patient).
		Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, item.Subtotal)
		if item.Quantity > 1 {
			doc.TextF("   @ %s each", item.UnitPrice)
		}
		if item.Detail != "" {
			doc.Wrapped("   ", item.Detail)
		}
	}

	doc.Separator('-').
		SetBold(true).
		KeyValue("TOTAL:", r.Total).
		SetBold(false)

	for _, p := range r.Payments {
		doc.KeyValue(p.Method+" "+p.Date, p.Amount)
	}
	doc.KeyValue("Paid:", r.Paid).
		KeyValue("Balance:", r.Outstanding).
		KeyValue("Status:", r.Status).
		Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for trusting us").
		Text("with your smile!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
