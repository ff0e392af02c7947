package routes

import (
	"net/http"

	"github.com/dentacare/clinic-api/internal/config"
	domainRepo "github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/internal/presentation/http/handler"
	"github.com/dentacare/clinic-api/internal/presentation/http/middleware"
	"github.com/dentacare/clinic-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Billing     *handler.BillingHandler
	Appointment *handler.AppointmentHandler
	Patient     *handler.PatientHandler
	Dashboard   *handler.DashboardHandler
	Report      *handler.ReportHandler
	Printer     *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is owned by the caller, which closes it on shutdown. Nil disables rate limiting.
	RateLimiter *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.StaffAuth(deps.JWTManager, deps.Cfg.AuthRequired))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	idempotency := middleware.NewIdempotency(deps.IdempotencyRepo, deps.Cfg.Billing.IdempotencyTTL)

	registerBillingRoutes(v1, h, idempotency)
	registerAppointmentRoutes(v1, h, idempotency)
	registerPatientRoutes(v1, h)

	// Dashboard
	v1.GET("/dashboard", h.Dashboard.GetStats)

	// Reports
	v1.GET("/reports/billing.xlsx", h.Report.BillingReport)

	// Printer
	printer := v1.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}

	return router
}

func registerBillingRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency *middleware.Idempotency) {
	billing := v1.Group("/billing")
	{
		billing.GET("", h.Billing.List)
		billing.GET("/outstanding", h.Billing.ListOutstanding)
		billing.GET("/preview/:appointmentId", h.Billing.Preview)
		billing.GET("/appointment/:appointmentId", h.Billing.GetByAppointment)
		billing.POST("", idempotency.Middleware(), h.Billing.Create)
		billing.GET("/:id", h.Billing.Get)
		billing.PUT("/:id", idempotency.Middleware(), h.Billing.Update)
		billing.POST("/:id/mark-paid", idempotency.Middleware(), h.Billing.MarkPaid)
		billing.POST("/:id/receipt/print", h.Billing.PrintReceipt)
		billing.POST("/:id/receipt/email", h.Billing.EmailReceipt)
	}
}

func registerAppointmentRoutes(v1 *gin.RouterGroup, h *Handlers, idempotency *middleware.Idempotency) {
	appointments := v1.Group("/appointments")
	{
		appointments.POST("", idempotency.Middleware(), h.Appointment.Create)
		appointments.GET("", h.Appointment.List)
		appointments.GET("/:id", h.Appointment.Get)
		appointments.PUT("/:id", h.Appointment.Update)
		appointments.POST("/:id/complete", h.Appointment.Complete)
	}
}

func registerPatientRoutes(v1 *gin.RouterGroup, h *Handlers) {
	patients := v1.Group("/patients")
	{
		patients.POST("", h.Patient.Create)
		patients.GET("", h.Patient.List)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", h.Patient.Update)
	}
}
