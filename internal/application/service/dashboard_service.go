package service

import (
	"context"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/pkg/money"
)

// DashboardService provides billing statistics for the clinic dashboard
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	BillsThisMonth     int64                `json:"billsThisMonth"`
	PendingBills       int64                `json:"pendingBills"`
	PartialBills       int64                `json:"partialBills"`
	PaidBills          int64                `json:"paidBills"`
	BilledThisMonth    float64              `json:"billedThisMonth"`
	CollectedThisMonth float64              `json:"collectedThisMonth"`
	OutstandingTotal   float64              `json:"outstandingTotal"`
	BilledGrowth       float64              `json:"billedGrowth"`
	DailyCollections   []DailyCollection    `json:"dailyCollections"`
	MethodBreakdown    []MethodCollection   `json:"methodBreakdown"`
	TopServices        []ServiceRevenuePoint `json:"topServices"`
}

// DailyCollection is the amount collected on one day
type DailyCollection struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Payments int64   `json:"payments"`
}

// MethodCollection is the amount collected through one payment method
type MethodCollection struct {
	Method   string  `json:"method"`
	Amount   float64 `json:"amount"`
	Payments int64   `json:"payments"`
}

// ServiceRevenuePoint is a service's billed revenue
type ServiceRevenuePoint struct {
	ServiceName string  `json:"serviceName"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

const dashboardDays = 7

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfNextMonth := startOfMonth.AddDate(0, 1, 0)
	startOfLastMonth := startOfMonth.AddDate(0, -1, 0)

	current, err := s.analyticsRepo.GetBillStats(ctx, startOfMonth, startOfNextMonth)
	if err != nil {
		return nil, err
	}
	previous, err := s.analyticsRepo.GetBillStats(ctx, startOfLastMonth, startOfMonth)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.analyticsRepo.GetOutstandingTotal(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		BillsThisMonth:     current.BillCount,
		PendingBills:       current.PendingCount,
		PartialBills:       current.PartialCount,
		PaidBills:          current.PaidCount,
		BilledThisMonth:    money.Float(current.TotalBilled),
		CollectedThisMonth: money.Float(current.TotalCollected),
		OutstandingTotal:   money.Float(outstanding),
		BilledGrowth:       growth(current.TotalBilled, previous.TotalBilled),
	}

	daily, err := s.analyticsRepo.GetDailyCollections(ctx, dashboardDays-1)
	if err != nil {
		return nil, err
	}
	stats.DailyCollections = fillDays(daily, now, dashboardDays)

	methods, err := s.analyticsRepo.GetCollectionsByMethod(ctx, startOfMonth, startOfNextMonth)
	if err != nil {
		return nil, err
	}
	stats.MethodBreakdown = make([]MethodCollection, 0, len(methods))
	for _, m := range methods {
		stats.MethodBreakdown = append(stats.MethodBreakdown, MethodCollection{
			Method:   m.Method.Label(),
			Amount:   money.Float(m.Amount),
			Payments: m.PaymentCount,
		})
	}

	top, err := s.analyticsRepo.GetTopServices(ctx, 5)
	if err != nil {
		return nil, err
	}
	stats.TopServices = make([]ServiceRevenuePoint, 0, len(top))
	for _, t := range top {
		stats.TopServices = append(stats.TopServices, ServiceRevenuePoint{
			ServiceName: t.ServiceName,
			Quantity:    t.Quantity,
			Revenue:     money.Float(t.Revenue),
		})
	}

	return stats, nil
}

// fillDays returns one point per day ending today, with zero for days without payments.
func fillDays(rows []repository.DailyCollectionResult, now time.Time, days int) []DailyCollection {
	byDate := make(map[string]repository.DailyCollectionResult, len(rows))
	for _, r := range rows {
		byDate[r.Date.Format("2006-01-02")] = r
	}

	points := make([]DailyCollection, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		row := byDate[date.Format("2006-01-02")]
		points = append(points, DailyCollection{
			Date:     date.Format("Jan 02"),
			Amount:   money.Float(row.Amount),
			Payments: row.PaymentCount,
		})
	}
	return points
}

// growth returns the percentage change from previous to current.
func growth(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}
