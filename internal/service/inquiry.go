package service

import (
	"context"
	"fmt"
	"time"

	"github.com/casavia/casavia/internal/domain"
	"github.com/casavia/casavia/internal/telemetry"
)

// InquiryRepositoryInterface defines the repository interface for inquiry persistence
type InquiryRepositoryInterface interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
	GetByID(ctx context.Context, id string) (*domain.Inquiry, error)
	ListByAgent(ctx context.Context, agentID string) ([]*domain.Inquiry, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.Inquiry, error)
	UpdateStatus(ctx context.Context, id string, status domain.InquiryStatus) error
	CountNewByAgent(ctx context.Context, agentID string) (int64, error)
}

// InquiryService handles visitor inquiries about listings.
type InquiryService struct {
	inquiryRepo  InquiryRepositoryInterface
	propertyRepo PropertyRepositoryInterface
	txRunner     TxRunner
	uuidGen      UUIDGenerator
}

func NewInquiryService(
	inquiryRepo InquiryRepositoryInterface,
	propertyRepo PropertyRepositoryInterface,
	txRunner TxRunner,
) *InquiryService {
	return &InquiryService{
		inquiryRepo:  inquiryRepo,
		propertyRepo: propertyRepo,
		txRunner:     txRunner,
		uuidGen:      &DefaultUUIDGenerator{},
	}
}

func NewInquiryServiceWithUUIDGen(
	inquiryRepo InquiryRepositoryInterface,
	propertyRepo PropertyRepositoryInterface,
	txRunner TxRunner,
	uuidGen UUIDGenerator,
) *InquiryService {
	s := NewInquiryService(inquiryRepo, propertyRepo, txRunner)
	s.uuidGen = uuidGen
	return s
}

// CreateInquiryInput represents the input for submitting an inquiry
type CreateInquiryInput struct {
	PropertyID string
	Name       string
	Email      string
	Phone      string
	Message    string
}

// Create records a visitor inquiry against an active listing. The inquiry
// insert and the listing's counter bump commit in one transaction.
func (s *InquiryService) Create(ctx context.Context, input CreateInquiryInput) (*domain.Inquiry, error) {
	ctx, span := telemetry.StartSpan(ctx, "InquiryService.Create", telemetry.SpanAttributes{
		PropertyID: input.PropertyID,
		Operation:  "create",
	})
	defer span.End()

	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}

	if property.Status != domain.PropertyStatusActive {
		return nil, domain.ErrListingNotActive
	}

	inquiry := &domain.Inquiry{
		ID:         s.uuidGen.NewString(),
		PropertyID: input.PropertyID,
		AgentID:    property.AgentID,
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Message:    input.Message,
		Status:     domain.InquiryStatusNew,
		CreatedAt:  time.Now().UTC(),
	}

	if err := domain.ValidateInquiry(inquiry); err != nil {
		return nil, err
	}

	if s.txRunner != nil {
		err = s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
			if err := repos.Inquiries().Create(ctx, inquiry); err != nil {
				return fmt.Errorf("failed to create inquiry: %w", err)
			}
			return repos.Properties().IncrementInquiryCount(ctx, input.PropertyID)
		})
	} else {
		if err = s.inquiryRepo.Create(ctx, inquiry); err == nil {
			err = s.propertyRepo.IncrementInquiryCount(ctx, input.PropertyID)
		}
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return inquiry, nil
}

// ListByAgent retrieves inquiries addressed to an agent's listings
func (s *InquiryService) ListByAgent(ctx context.Context, agentID string) ([]*domain.Inquiry, error) {
	return s.inquiryRepo.ListByAgent(ctx, agentID)
}

// ListByProperty retrieves inquiries for one listing, with an ownership check
func (s *InquiryService) ListByProperty(ctx context.Context, propertyID, agentID string) ([]*domain.Inquiry, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.AgentID != agentID {
		return nil, domain.ErrNotListingOwner
	}

	return s.inquiryRepo.ListByProperty(ctx, propertyID)
}

// UpdateStatus moves an inquiry through its lifecycle, with an ownership check
func (s *InquiryService) UpdateStatus(ctx context.Context, inquiryID, agentID string, status domain.InquiryStatus) (*domain.Inquiry, error) {
	if !domain.IsValidInquiryStatus(status) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid inquiry status")
	}

	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if inquiry.AgentID != agentID {
		return nil, domain.ErrNotListingOwner
	}

	if err := s.inquiryRepo.UpdateStatus(ctx, inquiryID, status); err != nil {
		return nil, err
	}

	inquiry.Status = status
	return inquiry, nil
}
