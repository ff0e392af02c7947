package response

import (
	"github.com/dentacare/clinic-api/internal/domain/billing"
	"github.com/dentacare/clinic-api/internal/domain/entity"
)

// BillResponse is a stored bill plus its display view
type BillResponse struct {
	entity.Bill
	View billing.BillView `json:"view"`
}

// NewBillResponse builds the response for a bill
func NewBillResponse(b *entity.Bill) *BillResponse {
	return &BillResponse{Bill: *b, View: billing.Present(b)}
}

// MarshalJSON keeps the bill's own peso conversion and adds the view.
func (r BillResponse) MarshalJSON() ([]byte, error) {
	return marshalWithView(r.Bill, r.View)
}

// BillEnvelope is the body of single-bill endpoints: {"bill": {...}}
type BillEnvelope struct {
	Bill *BillResponse `json:"bill"`
}

// NewBillEnvelope wraps a bill for the billing endpoints
func NewBillEnvelope(b *entity.Bill) BillEnvelope {
	return BillEnvelope{Bill: NewBillResponse(b)}
}

// NewBillList converts bills to responses
func NewBillList(bills []entity.Bill) []*BillResponse {
	out := make([]*BillResponse, 0, len(bills))
	for i := range bills {
		out = append(out, NewBillResponse(&bills[i]))
	}
	return out
}
