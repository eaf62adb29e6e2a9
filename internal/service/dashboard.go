package service

import (
	"context"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/telemetry"
)

// DashboardPropertyRepository defines the repository interface for dashboard aggregates
type DashboardPropertyRepository interface {
	CountByStatus(ctx context.Context, agentID string) (map[domain.PropertyStatus]int64, error)
	AnalyticsTotals(ctx context.Context, agentID string) (views, inquiries int64, err error)
}

// DashboardInquiryRepository defines the repository interface for dashboard inquiry counts
type DashboardInquiryRepository interface {
	CountNewByAgent(ctx context.Context, agentID string) (int64, error)
}

// DashboardSummary aggregates an agent's listing and inquiry counters.
type DashboardSummary struct {
	ListingsByStatus map[domain.PropertyStatus]int64
	TotalViews       int64
	TotalInquiries   int64
	NewInquiries     int64
}

// DashboardService assembles the agent dashboard.
type DashboardService struct {
	propertyRepo DashboardPropertyRepository
	inquiryRepo  DashboardInquiryRepository
}

func NewDashboardService(propertyRepo DashboardPropertyRepository, inquiryRepo DashboardInquiryRepository) *DashboardService {
	return &DashboardService{
		propertyRepo: propertyRepo,
		inquiryRepo:  inquiryRepo,
	}
}

// Summary gathers the per-status listing counts and counter totals for
// one agent.
func (s *DashboardService) Summary(ctx context.Context, agentID string) (*DashboardSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "DashboardService.Summary", telemetry.SpanAttributes{
		AgentID:   agentID,
		Operation: "summary",
	})
	defer span.End()

	byStatus, err := s.propertyRepo.CountByStatus(ctx, agentID)
	if err != nil {
		return nil, err
	}

	views, inquiries, err := s.propertyRepo.AnalyticsTotals(ctx, agentID)
	if err != nil {
		return nil, err
	}

	newInquiries, err := s.inquiryRepo.CountNewByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		ListingsByStatus: byStatus,
		TotalViews:       views,
		TotalInquiries:   inquiries,
		NewInquiries:     newInquiries,
	}, nil
}
