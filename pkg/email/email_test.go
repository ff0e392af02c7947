package email

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendReceipt(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	svc := NewEmailService(EmailConfig{SMTPHost: "smtp.test", SMTPPort: 587, FromName: "Clinic", FromEmail: "billing@clinic.test"}).
		WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, msg
			return nil
		})

	err := svc.SendReceipt(context.Background(), "juan@example.com", ReceiptData{
		ClinicName:  "DentaCare",
		PatientName: "Juan <script>",
		BillNo:      "AB12CD34",
		Lines:       []ReceiptLine{{Name: "Filling", Quantity: 3, Subtotal: "₱540.00"}},
		Total:       "₱540.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.Equal(t, []string{"juan@example.com"}, gotTo)
	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Your receipt from DentaCare - Bill AB12CD34")
	assert.Contains(t, body, "3 x Filling")
	assert.Contains(t, body, "Juan &lt;script&gt;")
}

func TestSendWithoutConfig(t *testing.T) {
	err := NewEmailService(EmailConfig{}).SendBalanceReminder(context.Background(), "a@b.c", ReminderData{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
