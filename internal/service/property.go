package service

import (
	"context"
	"time"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/metrics"
	"github.com/casavia/casavia/internal/pagination"
	"github.com/casavia/casavia/internal/search"
	"github.com/casavia/casavia/internal/telemetry"
	"github.com/google/uuid"
)

// PropertyRepositoryInterface defines the repository interface for listing persistence
type PropertyRepositoryInterface interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Update(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter search.And, sort search.Sort, limit, offset int) ([]*domain.Property, error)
	Count(ctx context.Context, filter search.And) (int64, error)
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Property, error)
	IncrementViewCount(ctx context.Context, id string) error
	IncrementInquiryCount(ctx context.Context, id string) error
	FindSimilar(ctx context.Context, id string, limit int) ([]*domain.Property, error)
}

// EmbeddingJobRepositoryInterface defines the repository interface for embedding job persistence
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SearchResult holds one page of matching listings.
type SearchResult struct {
	Properties []*domain.Property
	Page       pagination.Page
}

// PropertyService handles business logic for listings, including the
// public search pipeline.
type PropertyService struct {
	propertyRepo  PropertyRepositoryInterface
	jobRepo       EmbeddingJobRepositoryInterface
	expander      *search.Expander
	uuidGen       UUIDGenerator
	searchTimeout time.Duration
	listingTTL    time.Duration
}

// NewPropertyService creates a new PropertyService instance
func NewPropertyService(
	propertyRepo PropertyRepositoryInterface,
	jobRepo EmbeddingJobRepositoryInterface,
	searchTimeout time.Duration,
	listingTTL time.Duration,
) *PropertyService {
	return &PropertyService{
		propertyRepo:  propertyRepo,
		jobRepo:       jobRepo,
		expander:      search.NewExpander(),
		uuidGen:       &DefaultUUIDGenerator{},
		searchTimeout: searchTimeout,
		listingTTL:    listingTTL,
	}
}

// NewPropertyServiceWithUUIDGen creates a new PropertyService with custom UUID generator (for testing)
func NewPropertyServiceWithUUIDGen(
	propertyRepo PropertyRepositoryInterface,
	jobRepo EmbeddingJobRepositoryInterface,
	searchTimeout time.Duration,
	listingTTL time.Duration,
	uuidGen UUIDGenerator,
) *PropertyService {
	s := NewPropertyService(propertyRepo, jobRepo, searchTimeout, listingTTL)
	s.uuidGen = uuidGen
	return s
}

// Search runs the full pipeline for one request: synonym expansion,
// composite filter assembly, then a bounded fetch and count against the
// store. The count runs concurrently with the fetch; both must succeed.
func (s *PropertyService) Search(ctx context.Context, req search.Request) (*SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.Search", telemetry.SpanAttributes{
		Query:     req.Query,
		Operation: "search",
	})
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	groups := s.expander.Expand(req.Query)
	filter := search.Build(req, groups)

	type countResult struct {
		total int64
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		total, err := s.propertyRepo.Count(ctx, filter)
		countCh <- countResult{total: total, err: err}
	}()

	offset := pagination.Offset(req.Page, req.PageSize)
	properties, err := s.propertyRepo.Search(ctx, filter, req.Sort, req.PageSize, offset)
	if err != nil {
		span.SetError(err)
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to fetch properties", err)
	}

	count := <-countCh
	if count.err != nil {
		span.SetError(count.err)
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to fetch properties", count.err)
	}

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.SearchResults.Observe(float64(count.total))

	return &SearchResult{
		Properties: properties,
		Page:       pagination.NewPage(req.Page, req.PageSize, count.total),
	}, nil
}

// GetByID retrieves a single listing and records the view. The counter
// bump is best-effort; a failed increment never blocks the read.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.GetByID", telemetry.SpanAttributes{
		PropertyID: id,
		Operation:  "get",
	})
	defer span.End()

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.propertyRepo.IncrementViewCount(ctx, id); err != nil {
		telemetry.CaptureError(ctx, err)
	} else {
		property.ViewCount++
	}

	return property, nil
}

// CreateInput represents the input for creating a listing
type CreateInput struct {
	AgentID        string
	Title          string
	Description    string
	Type           domain.PropertyType
	ListingType    domain.ListingType
	Price          domain.Price
	Location       domain.Location
	Specifications domain.Specifications
	Amenities      []string
}

// Create creates a new listing in draft status and queues an embedding job
func (s *PropertyService) Create(ctx context.Context, input CreateInput) (*domain.Property, error) {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.Create", telemetry.SpanAttributes{
		AgentID:   input.AgentID,
		Operation: "create",
	})
	defer span.End()

	now := time.Now().UTC()
	property := &domain.Property{
		ID:             s.uuidGen.NewString(),
		AgentID:        input.AgentID,
		Title:          input.Title,
		Description:    input.Description,
		Type:           input.Type,
		ListingType:    input.ListingType,
		Price:          input.Price,
		Location:       input.Location,
		Specifications: input.Specifications,
		Amenities:      input.Amenities,
		Photos:         []string{},
		Status:         domain.PropertyStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if s.listingTTL > 0 {
		expiresAt := now.Add(s.listingTTL)
		property.ExpiresAt = &expiresAt
	}

	if err := domain.ValidateProperty(property); err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	if s.jobRepo != nil {
		job := &domain.EmbeddingJob{
			ID:         s.uuidGen.NewString(),
			PropertyID: property.ID,
			Status:     domain.EmbeddingJobStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.jobRepo.Create(ctx, job); err != nil {
			telemetry.CaptureError(ctx, err)
		}
	}

	return property, nil
}

// UpdateInput represents the input for updating a listing
type UpdateInput struct {
	PropertyID     string
	AgentID        string
	Title          string
	Description    string
	Type           domain.PropertyType
	ListingType    domain.ListingType
	Price          domain.Price
	Location       domain.Location
	Specifications domain.Specifications
	Amenities      []string
	Status         domain.PropertyStatus
}

// Update modifies a listing owned by the calling agent and re-queues an
// embedding job when the text changed
func (s *PropertyService) Update(ctx context.Context, input UpdateInput) (*domain.Property, error) {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.Update", telemetry.SpanAttributes{
		AgentID:    input.AgentID,
		PropertyID: input.PropertyID,
		Operation:  "update",
	})
	defer span.End()

	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	if property.AgentID != input.AgentID {
		return nil, domain.ErrNotListingOwner
	}

	textChanged := property.Title != input.Title || property.Description != input.Description

	property.Title = input.Title
	property.Description = input.Description
	property.Type = input.Type
	property.ListingType = input.ListingType
	property.Price = input.Price
	property.Location = input.Location
	property.Specifications = input.Specifications
	property.Amenities = input.Amenities
	if input.Status != "" {
		property.Status = input.Status
	}

	if err := domain.ValidateProperty(property); err != nil {
		return nil, err
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}

	if textChanged && s.jobRepo != nil {
		now := time.Now().UTC()
		job := &domain.EmbeddingJob{
			ID:         s.uuidGen.NewString(),
			PropertyID: property.ID,
			Status:     domain.EmbeddingJobStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.jobRepo.Create(ctx, job); err != nil {
			telemetry.CaptureError(ctx, err)
		}
	}

	return property, nil
}

// Delete removes a listing owned by the calling agent
func (s *PropertyService) Delete(ctx context.Context, propertyID, agentID string) error {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.Delete", telemetry.SpanAttributes{
		AgentID:    agentID,
		PropertyID: propertyID,
		Operation:  "delete",
	})
	defer span.End()

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}

	if property.AgentID != agentID {
		return domain.ErrNotListingOwner
	}

	return s.propertyRepo.Delete(ctx, propertyID)
}

// Similar returns active listings closest to the given one by embedding
// distance
func (s *PropertyService) Similar(ctx context.Context, propertyID string, limit int) ([]*domain.Property, error) {
	ctx, span := telemetry.StartSpan(ctx, "PropertyService.Similar", telemetry.SpanAttributes{
		PropertyID: propertyID,
		Operation:  "similar",
	})
	defer span.End()

	if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	return s.propertyRepo.FindSimilar(ctx, propertyID, limit)
}

// ListByAgent retrieves all listings owned by an agent, regardless of status
func (s *PropertyService) ListByAgent(ctx context.Context, agentID string) ([]*domain.Property, error) {
	return s.propertyRepo.ListByAgent(ctx, agentID)
}
