package service

import (
	"context"
	"fmt"

	"github.com/casavia/casavia/internal/domain"
)

type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	HeadObject(ctx context.Context, key string) (*ObjectMetadata, error)
}

type ObjectMetadata struct {
	ContentLength int64
	ContentType   string
	ETag          string
}

// PhotoPropertyRepository defines the repository interface for photo operations
type PhotoPropertyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	AddPhoto(ctx context.Context, id, storageKey string) error
}

// PhotoService handles listing photo uploads via presigned URLs.
type PhotoService struct {
	propertyRepo  PhotoPropertyRepository
	storageClient StorageClientInterface
	uuidGen       UUIDGenerator
}

func NewPhotoService(propertyRepo PhotoPropertyRepository, storageClient StorageClientInterface) *PhotoService {
	return &PhotoService{
		propertyRepo:  propertyRepo,
		storageClient: storageClient,
		uuidGen:       &DefaultUUIDGenerator{},
	}
}

func NewPhotoServiceWithUUIDGen(propertyRepo PhotoPropertyRepository, storageClient StorageClientInterface, uuidGen UUIDGenerator) *PhotoService {
	s := NewPhotoService(propertyRepo, storageClient)
	s.uuidGen = uuidGen
	return s
}

type InitPhotoUploadInput struct {
	PropertyID  string
	AgentID     string
	Filename    string
	ContentType string
}

type InitPhotoUploadResult struct {
	StorageKey string
	UploadURL  string
}

// InitUpload issues a presigned PUT URL for one photo. The object key is
// scoped to the listing so cleanup can delete by prefix.
func (s *PhotoService) InitUpload(ctx context.Context, input InitPhotoUploadInput) (*InitPhotoUploadResult, error) {
	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.AgentID != input.AgentID {
		return nil, domain.ErrNotListingOwner
	}

	storageKey := fmt.Sprintf("properties/%s/%s-%s", input.PropertyID, s.uuidGen.NewString(), input.Filename)

	uploadURL, err := s.storageClient.GenerateUploadURL(ctx, storageKey, input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &InitPhotoUploadResult{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
	}, nil
}

type CompletePhotoUploadInput struct {
	PropertyID string
	AgentID    string
	StorageKey string
}

// CompleteUpload verifies the object landed in storage and attaches it to
// the listing's photo list.
func (s *PhotoService) CompleteUpload(ctx context.Context, input CompletePhotoUploadInput) error {
	property, err := s.propertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		return err
	}
	if property.AgentID != input.AgentID {
		return domain.ErrNotListingOwner
	}

	if _, err := s.storageClient.HeadObject(ctx, input.StorageKey); err != nil {
		return fmt.Errorf("failed to verify uploaded photo: %w", err)
	}

	return s.propertyRepo.AddPhoto(ctx, input.PropertyID, input.StorageKey)
}

// DownloadURL issues a presigned GET URL for a stored photo.
func (s *PhotoService) DownloadURL(ctx context.Context, propertyID, storageKey string) (string, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return "", err
	}

	found := false
	for _, key := range property.Photos {
		if key == storageKey {
			found = true
			break
		}
	}
	if !found {
		return "", domain.ErrPhotoNotFound
	}

	return s.storageClient.GenerateDownloadURL(ctx, storageKey)
}
