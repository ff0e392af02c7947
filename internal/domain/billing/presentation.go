package billing

import (
	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/pkg/money"
)

// ItemView is a bill item prepared for display.
type ItemView struct {
	ServiceName   string `json:"serviceName"`
	Description   string `json:"description"`
	QuantityLabel string `json:"quantityLabel"`
	Quantity      int    `json:"quantity"`
	HasTreatments bool   `json:"hasTreatments"`
	UnitPrice     string `json:"unitPrice"`
	Subtotal      string `json:"subtotal"`
	Teeth         string `json:"teeth,omitempty"`
}

// PaymentView is a ledger entry prepared for display.
type PaymentView struct {
	PaidAt string `json:"paidAt"`
	Method string `json:"method"`
	Amount string `json:"amount"`
	Notes  string `json:"notes"`
}

// BillView is the formatted, read-only rendering of a persisted bill.
type BillView struct {
	PatientName string        `json:"patientName"`
	Status      string        `json:"status"`
	Items       []ItemView    `json:"items"`
	Payments    []PaymentView `json:"payments"`
	Total       string        `json:"total"`
	Paid        string        `json:"paid"`
	Outstanding string        `json:"outstanding"`
}

// HasTreatments is derived from the stored quantity on every render.
func HasTreatments(item entity.BillItem) bool {
	return item.Quantity > 1
}

// PresentItem formats one bill item.
func PresentItem(item entity.BillItem) ItemView {
	return ItemView{
		ServiceName:   item.ServiceName,
		Description:   item.Description,
		QuantityLabel: QuantityLabel(item),
		Quantity:      item.Quantity,
		HasTreatments: HasTreatments(item),
		UnitPrice:     money.FormatPeso(item.UnitPrice),
		Subtotal:      money.FormatPeso(item.Subtotal),
		Teeth:         FormatTeeth(item.SelectedTeeth),
	}
}

// Present formats a bill for display.
func Present(b *entity.Bill) BillView {
	view := BillView{
		PatientName: b.PatientName,
		Status:      b.Status.String(),
		Items:       make([]ItemView, 0, len(b.Items)),
		Payments:    make([]PaymentView, 0, len(b.PaymentHistory)),
		Total:       money.FormatPeso(b.TotalAmount),
		Paid:        money.FormatPeso(b.PaidAmount),
		Outstanding: money.FormatPeso(b.OutstandingBalance()),
	}
	for _, item := range b.Items {
		view.Items = append(view.Items, PresentItem(item))
	}
	for _, p := range b.PaymentHistory {
		view.Payments = append(view.Payments, PaymentView{
			PaidAt: p.PaidAt.Format(DescriptionDateLayout),
			Method: p.PaymentMethod.Label(),
			Amount: money.FormatPeso(p.Amount),
			Notes:  p.Notes,
		})
	}
	return view
}
