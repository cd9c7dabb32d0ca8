package service

import (
	"context"
	"time"

	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"
)

type DailySummary struct {
	Date            string                  `json:"date"`
	SalesCount      int64                   `json:"sales_count"`
	SalesTotal      int64                   `json:"sales_total"`
	ByType          []repository.GroupTotal `json:"by_type"`
	ByPaymentMethod []repository.GroupTotal `json:"by_payment_method"`
	OutstandingDP   repository.GroupTotal   `json:"outstanding_dp"`
	Buybacks        repository.GroupTotal   `json:"buybacks"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

type DashboardService interface {
	GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.MovementChartPoint, error)
	Today() time.Time
}

type dashboardService struct {
	reportRepo repository.ReportRepository
	loc        *time.Location
	now        Clock
}

func NewDashboardService(reportRepo repository.ReportRepository, loc *time.Location, clock Clock) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{reportRepo: reportRepo, loc: loc, now: clockOrNow(clock)}
}

func (s *dashboardService) Today() time.Time {
	return model.Day(s.now(), s.loc)
}

func (s *dashboardService) GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	day = truncateDay(day)
	byType, err := s.reportRepo.SalesByType(ctx, day)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.reportRepo.SalesByPaymentMethod(ctx, day)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.reportRepo.OutstandingDownPayments(ctx)
	if err != nil {
		return nil, err
	}
	buybacks, err := s.reportRepo.Buybacks(ctx, day)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:            day.Format(model.DateLayout),
		ByType:          byType,
		ByPaymentMethod: byMethod,
		OutstandingDP:   outstanding,
		Buybacks:        buybacks,
		GeneratedAt:     s.now(),
	}
	for _, t := range byType {
		summary.SalesCount += t.Count
		summary.SalesTotal += t.Total
	}
	return summary, nil
}

// GetStockMovement returns incoming and outgoing quantities for the last days, today included.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.MovementChartPoint, error) {
	if days <= 0 {
		days = 7
	}
	end := s.Today()
	start := end.AddDate(0, 0, -(days - 1))
	return s.reportRepo.MovementChart(ctx, start, end)
}
