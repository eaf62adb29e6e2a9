package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/casavia/casavia/internal/api"
	"github.com/casavia/casavia/internal/api/middleware"
	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/service"
	"github.com/go-chi/chi/v5"
)

type InquiryService interface {
	Create(ctx context.Context, input service.CreateInquiryInput) (*domain.Inquiry, error)
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Inquiry, error)
	ListByProperty(ctx context.Context, propertyID, agentID string) ([]*domain.Inquiry, error)
	UpdateStatus(ctx context.Context, inquiryID, agentID string, status domain.InquiryStatus) (*domain.Inquiry, error)
}

type InquiryHandler struct {
	svc InquiryService
}

func NewInquiryHandler(svc InquiryService) *InquiryHandler {
	return &InquiryHandler{svc: svc}
}

type CreateInquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type UpdateInquiryStatusRequest struct {
	Status string `json:"status"`
}

type InquiryResponse struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId"`
	AgentID    string `json:"agentId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
}

func inquiryToResponse(i *domain.Inquiry) *InquiryResponse {
	return &InquiryResponse{
		ID:         i.ID,
		PropertyID: i.PropertyID,
		AgentID:    i.AgentID,
		Name:       i.Name,
		Email:      i.Email,
		Phone:      i.Phone,
		Message:    i.Message,
		Status:     string(i.Status),
		CreatedAt:  i.CreatedAt.Format(time.RFC3339),
	}
}

// Create is the public endpoint for visitors to contact the listing agent.
func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		api.Error(w, http.StatusBadRequest, "property id is required")
		return
	}

	var req CreateInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email == "" {
		api.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Message == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	input := service.CreateInquiryInput{
		PropertyID: propertyID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
	}

	inquiry, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, inquiryToResponse(inquiry))
}

type InquiryListResponse struct {
	Inquiries []*InquiryResponse `json:"inquiries"`
}

// List returns inquiries addressed to the calling agent. A propertyId query
// parameter narrows the list to one listing.
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var inquiries []*domain.Inquiry
	var err error
	if propertyID := r.URL.Query().Get("propertyId"); propertyID != "" {
		inquiries, err = h.svc.ListByProperty(r.Context(), propertyID, agentID)
	} else {
		inquiries, err = h.svc.ListByAgent(r.Context(), agentID)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*InquiryResponse, len(inquiries))
	for i, inquiry := range inquiries {
		responses[i] = inquiryToResponse(inquiry)
	}

	api.Success(w, http.StatusOK, InquiryListResponse{Inquiries: responses})
}

func (h *InquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateInquiryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Status == "" {
		api.Error(w, http.StatusBadRequest, "status is required")
		return
	}

	inquiry, err := h.svc.UpdateStatus(r.Context(), id, agentID, domain.InquiryStatus(req.Status))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, inquiryToResponse(inquiry))
}
