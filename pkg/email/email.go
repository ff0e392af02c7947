package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("email: SMTP is not configured")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// SendFunc matches smtp.SendMail so tests can capture outgoing mail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   SendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// WithSendFunc replaces the SMTP transport.
func (s *EmailService) WithSendFunc(fn SendFunc) *EmailService {
	s.send = fn
	return s
}

// Enabled reports whether SMTP settings are present.
func (s *EmailService) Enabled() bool {
	return s.config.SMTPHost != "" && s.config.FromEmail != ""
}

// ReceiptLine is one billed service in a receipt email.
type ReceiptLine struct {
	Name     string
	Detail   string
	Quantity int
	Subtotal string
}

// ReceiptData is the content of a receipt email. Amounts are preformatted.
type ReceiptData struct {
	ClinicName  string
	PatientName string
	BillNo      string
	Date        string
	Status      string
	Lines       []ReceiptLine
	Total       string
	Paid        string
	Outstanding string
}

// SendReceipt emails a bill receipt to the patient
func (s *EmailService) SendReceipt(ctx context.Context, toEmail string, data ReceiptData) error {
	html, err := render("receipt", receiptTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	subject := fmt.Sprintf("Your receipt from %s - Bill %s", data.ClinicName, data.BillNo)
	return s.deliver(ctx, toEmail, subject, html)
}

// ReminderData is the content of an outstanding balance reminder.
type ReminderData struct {
	ClinicName  string
	PatientName string
	BillNo      string
	Date        string
	Outstanding string
}

// SendBalanceReminder emails an outstanding balance reminder
func (s *EmailService) SendBalanceReminder(ctx context.Context, toEmail string, data ReminderData) error {
	html, err := render("reminder", reminderTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	subject := fmt.Sprintf("Outstanding balance at %s", data.ClinicName)
	return s.deliver(ctx, toEmail, subject, html)
}

func (s *EmailService) deliver(ctx context.Context, to, subject, html string) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, s.buildHTMLEmail(to, subject, html)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		strings.ReplaceAll(subject, "\n", " "),
	)

	return []byte(headers + htmlBody)
}

func render(name, text string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Receipt</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-collapse: collapse;">
        <tr>
            <td style="background-color: #0f766e; padding: 30px; text-align: center;">
                <h1 style="color: #ffffff; margin: 0; font-size: 24px;">{{.ClinicName}}</h1>
            </td>
        </tr>
        <tr>
            <td style="padding: 30px; color: #334155; font-size: 15px;">
                <p>Hello {{.PatientName}},</p>
                <p>Here is your receipt for bill <strong>{{.BillNo}}</strong> dated {{.Date}}.</p>
                <table role="presentation" style="width: 100%; border-collapse: collapse; margin: 20px 0;">
                    {{range .Lines}}
                    <tr>
                        <td style="padding: 8px 0; border-bottom: 1px solid #e2e8f0;">
                            {{.Quantity}} x {{.Name}}{{if .Detail}}<br><span style="color: #64748b; font-size: 13px;">{{.Detail}}</span>{{end}}
                        </td>
                        <td style="padding: 8px 0; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Subtotal}}</td>
                    </tr>
                    {{end}}
                    <tr><td style="padding-top: 12px;"><strong>Total</strong></td><td style="padding-top: 12px; text-align: right;"><strong>{{.Total}}</strong></td></tr>
                    <tr><td>Paid</td><td style="text-align: right;">{{.Paid}}</td></tr>
                    <tr><td>Balance</td><td style="text-align: right;">{{.Outstanding}}</td></tr>
                </table>
                <p>Status: {{.Status}}</p>
            </td>
        </tr>
        <tr>
            <td style="background-color: #f8fafc; padding: 20px; text-align: center; color: #94a3b8; font-size: 12px;">
                This email was sent by {{.ClinicName}}
            </td>
        </tr>
    </table>
</body>
</html>
`

const reminderTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Balance reminder</title></head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-collapse: collapse;">
        <tr>
            <td style="padding: 30px; color: #334155; font-size: 15px;">
                <p>Hello {{.PatientName}},</p>
                <p>This is a friendly reminder that bill <strong>{{.BillNo}}</strong> from {{.Date}} has an outstanding balance of <strong>{{.Outstanding}}</strong>.</p>
                <p>You may settle it at the clinic by cash, card or GCash.</p>
                <p>Thank you,<br>{{.ClinicName}}</p>
            </td>
        </tr>
    </table>
</body>
</html>
`
