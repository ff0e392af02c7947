package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
	Log          LogConfig
	Printer      PrinterConfig
	Email        EmailConfig
	SMS          SMSConfig
	Scheduler    SchedulerConfig
	Billing      BillingConfig
	AuthRequired bool
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host          string
	Port          string
	Name          string
	User          string
	Password      string
	SSLMode       string
	Timezone      string
	MaxIdleConns  int
	MaxOpenConns  int
	SlowThreshold time.Duration
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type PrinterConfig struct {
	Type    string // usb, network or none
	USBPath string
	Address string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

type SMSConfig struct {
	Enabled    bool
	AccountSID string
	AuthToken  string
	FromNumber string
}

type SchedulerConfig struct {
	Enabled      bool
	SweepSpec    string
	ReminderSpec string
	CleanupSpec  string
}

// BillingConfig holds clinic details printed on receipts and billing policy knobs.
type BillingConfig struct {
	ClinicName        string
	ClinicAddress     string
	ClinicPhone       string
	ClinicTIN         string
	PaymentRetries    int
	ReminderAfterDays int
	IdempotencyTTL    time.Duration
	SweepBatchSize    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded, using environment variables")
	}
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_NAME", "clinic-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("AUTH_REQUIRED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "dentacare")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Manila")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("DB_SLOW_QUERY_MS", 200)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,Idempotency-Key")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("LOG_OUTPUT", "stdout")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "DentaCare Clinic")
	viper.SetDefault("SMS_ENABLED", false)
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SWEEP_CRON", "*/15 * * * *")
	viper.SetDefault("REMINDER_CRON", "0 9 * * *")
	viper.SetDefault("IDEMPOTENCY_CLEANUP_CRON", "30 3 * * *")
	viper.SetDefault("CLINIC_NAME", "DentaCare Dental Clinic")
	viper.SetDefault("PAYMENT_RETRIES", 3)
	viper.SetDefault("REMINDER_AFTER_DAYS", 7)
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("SWEEP_BATCH_SIZE", 100)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		AuthRequired: viper.GetBool("AUTH_REQUIRED"),
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			Name:          viper.GetString("DB_NAME"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			SSLMode:       viper.GetString("DB_SSL_MODE"),
			Timezone:      viper.GetString("DB_TIMEZONE"),
			MaxIdleConns:  viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:  viper.GetInt("DB_MAX_OPEN_CONNS"),
			SlowThreshold: time.Duration(viper.GetInt("DB_SLOW_QUERY_MS")) * time.Millisecond,
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
			Output: viper.GetString("LOG_OUTPUT"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("SMTP_FROM_NAME"),
			FromEmail:    viper.GetString("SMTP_FROM_EMAIL"),
		},
		SMS: SMSConfig{
			Enabled:    viper.GetBool("SMS_ENABLED"),
			AccountSID: viper.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  viper.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: viper.GetString("TWILIO_FROM_NUMBER"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      viper.GetBool("SCHEDULER_ENABLED"),
			SweepSpec:    viper.GetString("SWEEP_CRON"),
			ReminderSpec: viper.GetString("REMINDER_CRON"),
			CleanupSpec:  viper.GetString("IDEMPOTENCY_CLEANUP_CRON"),
		},
		Billing: BillingConfig{
			ClinicName:        viper.GetString("CLINIC_NAME"),
			ClinicAddress:     viper.GetString("CLINIC_ADDRESS"),
			ClinicPhone:       viper.GetString("CLINIC_PHONE"),
			ClinicTIN:         viper.GetString("CLINIC_TIN"),
			PaymentRetries:    viper.GetInt("PAYMENT_RETRIES"),
			ReminderAfterDays: viper.GetInt("REMINDER_AFTER_DAYS"),
			IdempotencyTTL:    time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
			SweepBatchSize:    viper.GetInt("SWEEP_BATCH_SIZE"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// IsProduction reports whether the app runs with production settings
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
