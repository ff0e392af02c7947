package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dentacare/clinic-api/internal/infrastructure/database"
	"github.com/dentacare/clinic-api/internal/infrastructure/scheduler"
	"github.com/dentacare/clinic-api/internal/presentation/http/handler"
	"github.com/dentacare/clinic-api/internal/presentation/http/middleware"
	"github.com/dentacare/clinic-api/internal/presentation/http/routes"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the billing scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run auto-migrations on startup")
	return cmd
}

func runServer(skipMigrate bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("main")

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if !skipMigrate {
		if err := database.AutoMigrate(a.db); err != nil {
			return err
		}
	}

	jobs := scheduler.New()
	if cfg.Scheduler.Enabled {
		if err := registerJobs(jobs, a); err != nil {
			return err
		}
		jobs.Start()
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Close()

	router := routes.Setup(&routes.Handlers{
		Billing:     handler.NewBillingHandler(a.billing, a.printer, a.notifications),
		Appointment: handler.NewAppointmentHandler(a.appointments),
		Patient:     handler.NewPatientHandler(a.patients),
		Dashboard:   handler.NewDashboardHandler(a.dashboard),
		Report:      handler.NewReportHandler(a.reports),
		Printer:     handler.NewPrinterHandler(a.printer),
	}, &routes.Deps{
		JWTManager:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours),
		Cfg:             cfg,
		IdempotencyRepo: a.idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Str("env", cfg.App.Env).Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func registerJobs(s *scheduler.Scheduler, a *app) error {
	jobs := []scheduler.Job{
		{
			Name: "bill-link-sweep",
			Spec: a.cfg.Scheduler.SweepSpec,
			Run: func(ctx context.Context) error {
				_, err := a.reconciliation.Sweep(ctx)
				return err
			},
		},
		{
			Name:    "balance-reminders",
			Spec:    a.cfg.Scheduler.ReminderSpec,
			Timeout: 30 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := a.notifications.SendBalanceReminders(ctx)
				return err
			},
		},
		{
			Name: "idempotency-cleanup",
			Spec: a.cfg.Scheduler.CleanupSpec,
			Run: func(ctx context.Context) error {
				_, err := a.reconciliation.CleanupIdempotency(ctx)
				return err
			},
		},
	}
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return err
		}
	}
	return nil
}
