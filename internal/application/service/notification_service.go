package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/email"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/money"
	"github.com/dentacare/clinic-api/pkg/pagination"
	"github.com/dentacare/clinic-api/pkg/sms"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mailer sends patient-facing billing emails
type Mailer interface {
	Enabled() bool
	SendReceipt(ctx context.Context, to string, data email.ReceiptData) error
	SendBalanceReminder(ctx context.Context, to string, data email.ReminderData) error
}

// NotificationService tells patients about payments and outstanding balances.
// Delivery failures are logged and never undo a payment.
type NotificationService struct {
	billRepo      repository.BillRepository
	sms           sms.Sender
	mailer        Mailer
	header        entity.ReceiptHeader
	reminderAfter time.Duration
	now           func() time.Time
	wg            sync.WaitGroup
	log           zerolog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	billRepo repository.BillRepository,
	sender sms.Sender,
	mailer Mailer,
	header entity.ReceiptHeader,
	reminderAfterDays int,
) *NotificationService {
	return &NotificationService{
		billRepo:      billRepo,
		sms:           sender,
		mailer:        mailer,
		header:        header,
		reminderAfter: time.Duration(reminderAfterDays) * 24 * time.Hour,
		now:           time.Now,
		log:           logger.WithComponent("notifications"),
	}
}

// PaymentPosted texts the patient a payment confirmation in the background.
func (s *NotificationService) PaymentPosted(ctx context.Context, bill *entity.Bill, entry *entity.PaymentHistory) {
	if !s.sms.Enabled() || bill.PatientPhone == "" {
		return
	}

	body := paymentMessage(s.header.ClinicName, bill, entry)
	to := bill.PatientPhone
	billID := bill.ID.String()
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		sid, err := s.sms.Send(ctx, to, body)
		if err != nil {
			s.log.Warn().Err(err).Str("bill_id", billID).Msg("payment sms failed")
			return
		}
		s.log.Debug().Str("bill_id", billID).Str("sid", sid).Msg("payment sms sent")
	}()
}

// Wait blocks until background deliveries finish.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func paymentMessage(clinic string, bill *entity.Bill, entry *entity.PaymentHistory) string {
	msg := fmt.Sprintf("%s: We received %s (%s) for bill %s.",
		clinic, money.FormatPeso(entry.Amount), entry.PaymentMethod.Label(), BillNumber(bill))
	if bill.OutstandingBalance() > 0 {
		return msg + fmt.Sprintf(" Remaining balance: %s.", money.FormatPeso(bill.OutstandingBalance()))
	}
	return msg + " Your bill is fully paid. Thank you!"
}

// EmailReceipt sends the current receipt of a bill to the patient's email.
func (s *NotificationService) EmailReceipt(ctx context.Context, billID uuid.UUID) error {
	if !s.mailer.Enabled() {
		return apperror.NewAppError(http.StatusServiceUnavailable, apperror.KindUnavailable, "Email delivery is not configured")
	}

	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		return err
	}
	if bill == nil {
		return apperror.NewNotFoundError("Bill")
	}
	if bill.PatientEmail == "" {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "patientEmail", Message: "bill has no patient email"},
		})
	}

	receipt := BuildReceipt(s.header, bill)
	data := email.ReceiptData{
		ClinicName:  receipt.Header.ClinicName,
		PatientName: receipt.Patient,
		BillNo:      receipt.BillNo,
		Date:        receipt.Date,
		Status:      receipt.Status,
		Lines:       make([]email.ReceiptLine, 0, len(receipt.Items)),
		Total:       receipt.Total,
		Paid:        receipt.Paid,
		Outstanding: receipt.Outstanding,
	}
	for _, item := range receipt.Items {
		data.Lines = append(data.Lines, email.ReceiptLine{
			Name:     item.Name,
			Detail:   item.Detail,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal,
		})
	}

	if err := s.mailer.SendReceipt(ctx, bill.PatientEmail, data); err != nil {
		s.log.Error().Err(err).Str("bill_id", billID.String()).Msg("receipt email failed")
		return fmt.Errorf("send receipt: %w", err)
	}
	s.log.Info().Str("bill_id", billID.String()).Msg("receipt emailed")
	return nil
}

// ReminderResult counts the reminders sent by a run
type ReminderResult struct {
	Bills  int `json:"bills"`
	SMS    int `json:"sms"`
	Emails int `json:"emails"`
	Failed int `json:"failed"`
}

// SendBalanceReminders notifies patients whose bills still carry a balance
// after the configured grace period.
func (s *NotificationService) SendBalanceReminders(ctx context.Context) (*ReminderResult, error) {
	result := &ReminderResult{}
	if !s.sms.Enabled() && !s.mailer.Enabled() {
		return result, nil
	}

	cutoff := s.now().Add(-s.reminderAfter)
	params := &pagination.PaginationParams{Page: 1, PerPage: 100}

	for {
		bills, total, err := s.billRepo.ListOutstanding(ctx, params)
		if err != nil {
			return result, err
		}
		for i := range bills {
			// oldest first, so everything after this is still within the grace period
			if bills[i].CreatedAt.After(cutoff) {
				return result, nil
			}
			s.remind(ctx, &bills[i], result)
		}
		if len(bills) == 0 || int64(params.Page*params.PerPage) >= total {
			return result, nil
		}
		params.Page++
	}
}

func (s *NotificationService) remind(ctx context.Context, bill *entity.Bill, result *ReminderResult) {
	result.Bills++
	log := s.log.With().Str("bill_id", bill.ID.String()).Logger()

	if s.sms.Enabled() && bill.PatientPhone != "" {
		body := fmt.Sprintf("%s: Hi %s, you have a remaining balance of %s for bill %s. Please settle at your next visit.",
			s.header.ClinicName, firstName(bill.PatientName), money.FormatPeso(bill.OutstandingBalance()), BillNumber(bill))
		if _, err := s.sms.Send(ctx, bill.PatientPhone, body); err != nil {
			result.Failed++
			log.Warn().Err(err).Msg("reminder sms failed")
		} else {
			result.SMS++
		}
	}

	if s.mailer.Enabled() && bill.PatientEmail != "" {
		err := s.mailer.SendBalanceReminder(ctx, bill.PatientEmail, email.ReminderData{
			ClinicName:  s.header.ClinicName,
			PatientName: bill.PatientName,
			BillNo:      BillNumber(bill),
			Date:        bill.CreatedAt.Format("January 2, 2006"),
			Outstanding: money.FormatPeso(bill.OutstandingBalance()),
		})
		if err != nil {
			result.Failed++
			log.Warn().Err(err).Msg("reminder email failed")
		} else {
			result.Emails++
		}
	}
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
