package handlers

import (
	"context"
	"net/http"

	"github.com/casavia/casavia/internal/api"
	"github.com/casavia/casavia/internal/api/middleware"
	"github.com/casavia/casavia/internal/service"
)

type DashboardService interface {
	Summary(ctx context.Context, agentID string) (*service.DashboardSummary, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type DashboardResponse struct {
	ListingsByStatus map[string]int64 `json:"listingsByStatus"`
	TotalViews       int64            `json:"totalViews"`
	TotalInquiries   int64            `json:"totalInquiries"`
	NewInquiries     int64            `json:"newInquiries"`
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	summary, err := h.svc.Summary(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	byStatus := make(map[string]int64, len(summary.ListingsByStatus))
	for status, count := range summary.ListingsByStatus {
		byStatus[string(status)] = count
	}

	api.Success(w, http.StatusOK, DashboardResponse{
		ListingsByStatus: byStatus,
		TotalViews:       summary.TotalViews,
		TotalInquiries:   summary.TotalInquiries,
		NewInquiries:     summary.NewInquiries,
	})
}
