package entity

// ReceiptHeader holds the clinic details printed at the top of a receipt.
type ReceiptHeader struct {
	ClinicName string `json:"clinicName"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TIN        string `json:"tin,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string `json:"name"`
	Detail    string `json:"detail,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Subtotal  string `json:"subtotal"`
}

// ReceiptPayment is one posted payment shown on a receipt.
type ReceiptPayment struct {
	Date   string `json:"date"`
	Method string `json:"method"`
	Amount string `json:"amount"`
	Notes  string `json:"notes,omitempty"`
}

// Receipt is a printable view of a bill, composed at print time and never stored.
// Amounts are preformatted peso strings.
type Receipt struct {
	Header      ReceiptHeader    `json:"header"`
	BillNo      string           `json:"billNo"`
	Date        string           `json:"date"`
	Patient     string           `json:"patient"`
	Status      string           `json:"status"`
	Items       []ReceiptItem    `json:"items"`
	Payments    []ReceiptPayment `json:"payments"`
	Total       string           `json:"total"`
	Paid        string           `json:"paid"`
	Outstanding string           `json:"outstanding"`
}
