package repository

import (
	"context"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/enum"
)

// BillStatsResult aggregates bills created in a period. Amounts are centavos.
type BillStatsResult struct {
	BillCount      int64
	PendingCount   int64
	PartialCount   int64
	PaidCount      int64
	TotalBilled    int64
	TotalCollected int64
}

// DailyCollectionResult is the amount collected on a single day
type DailyCollectionResult struct {
	Date         time.Time
	Amount       int64
	PaymentCount int64
}

// PaymentMethodResult is the amount collected through one payment method
type PaymentMethodResult struct {
	Method       enum.PaymentMethod
	Amount       int64
	PaymentCount int64
}

// TopServiceResult is a service's billed revenue
type TopServiceResult struct {
	ServiceName string
	Quantity    int64
	Revenue     int64
}

// AnalyticsRepository defines interface for billing aggregation queries
type AnalyticsRepository interface {
	// GetBillStats aggregates bills created in [from, to)
	GetBillStats(ctx context.Context, from, to time.Time) (*BillStatsResult, error)

	// GetOutstandingTotal returns the unpaid balance across all bills
	GetOutstandingTotal(ctx context.Context) (int64, error)

	// GetDailyCollections returns collected amounts for the last N days
	GetDailyCollections(ctx context.Context, days int) ([]DailyCollectionResult, error)

	// GetCollectionsByMethod returns collected amounts per payment method in [from, to)
	GetCollectionsByMethod(ctx context.Context, from, to time.Time) ([]PaymentMethodResult, error)

	// GetTopServices returns the highest billed services
	GetTopServices(ctx context.Context, limit int) ([]TopServiceResult, error)
}
