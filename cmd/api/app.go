package main

import (
	"fmt"

	"github.com/dentacare/clinic-api/internal/application/service"
	"github.com/dentacare/clinic-api/internal/config"
	domainRepo "github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/internal/infrastructure/database"
	"github.com/dentacare/clinic-api/internal/infrastructure/repository"
	"github.com/dentacare/clinic-api/pkg/email"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/printer"
	"github.com/dentacare/clinic-api/pkg/sms"
	"gorm.io/gorm"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg *config.Config
	db  *gorm.DB

	billRepo        domainRepo.BillRepository
	appointmentRepo domainRepo.AppointmentRepository
	patientRepo     domainRepo.PatientRepository
	idempotencyRepo domainRepo.IdempotencyRepository
	analyticsRepo   domainRepo.AnalyticsRepository

	billing        *service.BillingService
	appointments   *service.AppointmentService
	patients       *service.PatientService
	notifications  *service.NotificationService
	reconciliation *service.ReconciliationService
	printer        *service.PrinterService
	dashboard      *service.DashboardService
	reports        *service.ReportService
}

// loadConfig reads configuration and sets up the global logger.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := logger.Setup(logger.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}

// newApp connects to the database and wires repositories and services.
func newApp(cfg *config.Config) (*app, error) {
	log := logger.WithComponent("main")

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:             cfg,
		db:              db,
		billRepo:        repository.NewBillRepository(db),
		appointmentRepo: repository.NewAppointmentRepository(db),
		patientRepo:     repository.NewPatientRepository(db),
		idempotencyRepo: repository.NewIdempotencyRepository(db),
		analyticsRepo:   repository.NewAnalyticsRepository(db),
	}

	header := service.ReceiptHeaderFromConfig(&cfg.Billing)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
	})

	// Initialize SMS sender
	smsSender := sms.NewNullSender()
	if cfg.SMS.Enabled {
		smsSender = sms.NewTwilioSender(sms.Config{
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			FromNumber: cfg.SMS.FromNumber,
		})
	}

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, receipts will not be printed")
		thermalPrinter = printer.NewNullPrinter()
	}

	a.notifications = service.NewNotificationService(a.billRepo, smsSender, emailService, header, cfg.Billing.ReminderAfterDays)
	a.billing = service.NewBillingService(a.billRepo, a.appointmentRepo, a.notifications, cfg.Billing.PaymentRetries)
	a.appointments = service.NewAppointmentService(a.appointmentRepo, a.patientRepo, a.billRepo)
	a.patients = service.NewPatientService(a.patientRepo)
	a.reconciliation = service.NewReconciliationService(a.billRepo, a.appointmentRepo, a.idempotencyRepo, cfg.Billing.SweepBatchSize)
	a.printer = service.NewPrinterService(thermalPrinter, a.billRepo, header, cfg.Printer.Type)
	a.dashboard = service.NewDashboardService(a.analyticsRepo)
	a.reports = service.NewReportService(a.billRepo)

	log.Info().
		Bool("sms", smsSender.Enabled()).
		Bool("email", emailService.Enabled()).
		Str("printer", cfg.Printer.Type).
		Msg("services initialized")
	return a, nil
}

// close waits for pending notifications and releases the database.
func (a *app) close() {
	a.notifications.Wait()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
