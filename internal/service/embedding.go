package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/casavia/casavia/internal/domain"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingPropertyRepository defines the repository interface for embedding operations
type EmbeddingPropertyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// EmbeddingService generates and stores listing embeddings for the
// similar-listings feature
type EmbeddingService struct {
	client EmbeddingClient
	repo   EmbeddingPropertyRepository
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, repo EmbeddingPropertyRepository) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		repo:   repo,
	}
}

// GenerateEmbedding generates and stores an embedding for the given listing ID
// This method is called by the background worker
func (s *EmbeddingService) GenerateEmbedding(ctx context.Context, propertyID string) error {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}

	text := buildEmbeddingText(property)

	embedding, err := s.client.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.repo.UpdateEmbedding(ctx, propertyID, embedding); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}

	return nil
}

func buildEmbeddingText(p *domain.Property) string {
	var parts []string

	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}

	parts = append(parts, fmt.Sprintf("%s for %s in %s", p.Type, p.ListingType, p.Location.City))

	if len(p.Amenities) > 0 {
		parts = append(parts, fmt.Sprintf("Amenities: %s", strings.Join(p.Amenities, ", ")))
	}

	return strings.Join(parts, "\n\n")
}
