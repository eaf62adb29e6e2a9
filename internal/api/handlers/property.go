package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/casavia/casavia/internal/api"
	"github.com/casavia/casavia/internal/api/middleware"
	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/pagination"
	"github.com/casavia/casavia/internal/search"
	"github.com/casavia/casavia/internal/service"
	"github.com/go-chi/chi/v5"
)

type PropertyService interface {
	Search(ctx context.Context, req search.Request) (*service.SearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, input service.CreateInput) (*domain.Property, error)
	Update(ctx context.Context, input service.UpdateInput) (*domain.Property, error)
	Delete(ctx context.Context, propertyID, agentID string) error
	Similar(ctx context.Context, propertyID string, limit int) ([]*domain.Property, error)
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Property, error)
}

type PropertyHandler struct {
	svc PropertyService
}

func NewPropertyHandler(svc PropertyService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

type PriceBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
}

type LocationBody struct {
	Address      string  `json:"address"`
	City         string  `json:"city"`
	County       string  `json:"county"`
	Neighborhood string  `json:"neighborhood"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type SpecificationsBody struct {
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	SizeSqm   float64 `json:"sizeSqm"`
}

type CreatePropertyRequest struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	PropertyType   string             `json:"propertyType"`
	ListingType    string             `json:"listingType"`
	Price          PriceBody          `json:"price"`
	Location       LocationBody       `json:"location"`
	Specifications SpecificationsBody `json:"specifications"`
	Amenities      []string           `json:"amenities"`
}

type UpdatePropertyRequest struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	PropertyType   string             `json:"propertyType"`
	ListingType    string             `json:"listingType"`
	Price          PriceBody          `json:"price"`
	Location       LocationBody       `json:"location"`
	Specifications SpecificationsBody `json:"specifications"`
	Amenities      []string           `json:"amenities"`
	Status         string             `json:"status"`
}

type PropertyResponse struct {
	ID             string             `json:"id"`
	AgentID        string             `json:"agentId"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	PropertyType   string             `json:"propertyType"`
	ListingType    string             `json:"listingType"`
	Price          PriceBody          `json:"price"`
	Location       LocationBody       `json:"location"`
	Specifications SpecificationsBody `json:"specifications"`
	Amenities      []string           `json:"amenities"`
	Photos         []string           `json:"photos"`
	Status         string             `json:"status"`
	ViewCount      int64              `json:"viewCount"`
	InquiryCount   int64              `json:"inquiryCount"`
	ExpiresAt      string             `json:"expiresAt,omitempty"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}

func propertyToResponse(p *domain.Property) *PropertyResponse {
	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}

	resp := &PropertyResponse{
		ID:           p.ID,
		AgentID:      p.AgentID,
		Title:        p.Title,
		Description:  p.Description,
		PropertyType: string(p.Type),
		ListingType:  string(p.ListingType),
		Price: PriceBody{
			Amount:   p.Price.Amount,
			Currency: p.Price.Currency,
			Period:   string(p.Price.Period),
		},
		Location: LocationBody{
			Address:      p.Location.Address,
			City:         p.Location.City,
			County:       p.Location.County,
			Neighborhood: p.Location.Neighborhood,
			Latitude:     p.Location.Latitude,
			Longitude:    p.Location.Longitude,
		},
		Specifications: SpecificationsBody{
			Bedrooms:  p.Specifications.Bedrooms,
			Bathrooms: p.Specifications.Bathrooms,
			SizeSqm:   p.Specifications.SizeSqm,
		},
		Amenities:    amenities,
		Photos:       photos,
		Status:       string(p.Status),
		ViewCount:    p.ViewCount,
		InquiryCount: p.InquiryCount,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}

	if p.ExpiresAt != nil {
		resp.ExpiresAt = p.ExpiresAt.Format(time.RFC3339)
	}

	return resp
}

type PropertyListResponse struct {
	Properties []*PropertyResponse `json:"properties"`
	Pagination pagination.Page     `json:"pagination"`
}

// List is the public search endpoint. All filters arrive as query
// parameters; malformed values are ignored rather than rejected.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	req := search.ParseRequest(r.URL.Query())

	result, err := h.svc.Search(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PropertyResponse, len(result.Properties))
	for i, p := range result.Properties {
		responses[i] = propertyToResponse(p)
	}

	api.Success(w, http.StatusOK, PropertyListResponse{
		Properties: responses,
		Pagination: result.Page,
	})
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	property, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, propertyToResponse(property))
}

type SimilarPropertiesResponse struct {
	Properties []*PropertyResponse `json:"properties"`
}

func (h *PropertyHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	properties, err := h.svc.Similar(r.Context(), id, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PropertyResponse, len(properties))
	for i, p := range properties {
		responses[i] = propertyToResponse(p)
	}

	api.Success(w, http.StatusOK, SimilarPropertiesResponse{Properties: responses})
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PropertyType == "" {
		api.Error(w, http.StatusBadRequest, "propertyType is required")
		return
	}
	if req.ListingType == "" {
		api.Error(w, http.StatusBadRequest, "listingType is required")
		return
	}

	propertyType := domain.PropertyType(req.PropertyType)
	if !domain.IsValidPropertyType(propertyType) {
		api.Error(w, http.StatusBadRequest, "invalid property type")
		return
	}

	input := service.CreateInput{
		AgentID:     agentID,
		Title:       req.Title,
		Description: req.Description,
		Type:        propertyType,
		ListingType: domain.ListingType(req.ListingType),
		Price: domain.Price{
			Amount:   req.Price.Amount,
			Currency: req.Price.Currency,
			Period:   domain.PricePeriod(req.Price.Period),
		},
		Location: domain.Location{
			Address:      req.Location.Address,
			City:         req.Location.City,
			County:       req.Location.County,
			Neighborhood: req.Location.Neighborhood,
			Latitude:     req.Location.Latitude,
			Longitude:    req.Location.Longitude,
		},
		Specifications: domain.Specifications{
			Bedrooms:  req.Specifications.Bedrooms,
			Bathrooms: req.Specifications.Bathrooms,
			SizeSqm:   req.Specifications.SizeSqm,
		},
		Amenities: req.Amenities,
	}

	property, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, propertyToResponse(property))
}

func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	input := service.UpdateInput{
		PropertyID:  id,
		AgentID:     agentID,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.PropertyType(req.PropertyType),
		ListingType: domain.ListingType(req.ListingType),
		Price: domain.Price{
			Amount:   req.Price.Amount,
			Currency: req.Price.Currency,
			Period:   domain.PricePeriod(req.Price.Period),
		},
		Location: domain.Location{
			Address:      req.Location.Address,
			City:         req.Location.City,
			County:       req.Location.County,
			Neighborhood: req.Location.Neighborhood,
			Latitude:     req.Location.Latitude,
			Longitude:    req.Location.Longitude,
		},
		Specifications: domain.Specifications{
			Bedrooms:  req.Specifications.Bedrooms,
			Bathrooms: req.Specifications.Bathrooms,
			SizeSqm:   req.Specifications.SizeSqm,
		},
		Amenities: req.Amenities,
		Status:    domain.PropertyStatus(req.Status),
	}

	property, err := h.svc.Update(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, propertyToResponse(property))
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), id, agentID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListOwn returns the calling agent's listings regardless of status.
func (h *PropertyHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	properties, err := h.svc.ListByAgent(r.Context(), agentID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PropertyResponse, len(properties))
	for i, p := range properties {
		responses[i] = propertyToResponse(p)
	}

	api.Success(w, http.StatusOK, SimilarPropertiesResponse{Properties: responses})
}
