package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/casavia/casavia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectMetadata), args.Error(1)
}

func TestPhotoService_InitUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("issues presigned URL scoped to the listing", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoServiceWithUUIDGen(mockRepo, mockStorage, NewMockUUIDGenerator("photo-1"))

		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(activeProperty("prop-1", "agent-1"), nil)
		mockStorage.On("GenerateUploadURL", mock.Anything, "properties/prop-1/photo-1-front.jpg", "image/jpeg").
			Return("https://storage.example/upload", nil)

		result, err := svc.InitUpload(ctx, InitPhotoUploadInput{
			PropertyID:  "prop-1",
			AgentID:     "agent-1",
			Filename:    "front.jpg",
			ContentType: "image/jpeg",
		})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(result.StorageKey, "properties/prop-1/"))
		assert.Equal(t, "https://storage.example/upload", result.UploadURL)
	})

	t.Run("rejects listing of another agent", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoService(mockRepo, mockStorage)

		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(activeProperty("prop-1", "agent-1"), nil)

		_, err := svc.InitUpload(ctx, InitPhotoUploadInput{
			PropertyID:  "prop-1",
			AgentID:     "agent-2",
			Filename:    "front.jpg",
			ContentType: "image/jpeg",
		})
		assert.ErrorIs(t, err, domain.ErrNotListingOwner)
		mockStorage.AssertNotCalled(t, "GenerateUploadURL")
	})
}

func TestPhotoService_CompleteUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies the object then attaches it", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoService(mockRepo, mockStorage)

		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(activeProperty("prop-1", "agent-1"), nil)
		mockStorage.On("HeadObject", mock.Anything, "properties/prop-1/k").Return(&ObjectMetadata{ContentLength: 1024}, nil)
		mockRepo.On("AddPhoto", mock.Anything, "prop-1", "properties/prop-1/k").Return(nil)

		err := svc.CompleteUpload(ctx, CompletePhotoUploadInput{
			PropertyID: "prop-1",
			AgentID:    "agent-1",
			StorageKey: "properties/prop-1/k",
		})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("missing object fails", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoService(mockRepo, mockStorage)

		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(activeProperty("prop-1", "agent-1"), nil)
		mockStorage.On("HeadObject", mock.Anything, mock.Anything).Return(nil, errors.New("not found"))

		err := svc.CompleteUpload(ctx, CompletePhotoUploadInput{
			PropertyID: "prop-1",
			AgentID:    "agent-1",
			StorageKey: "properties/prop-1/k",
		})
		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "AddPhoto")
	})
}

func TestPhotoService_DownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("issues URL for attached photo", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoService(mockRepo, mockStorage)

		property := activeProperty("prop-1", "agent-1")
		property.Photos = []string{"properties/prop-1/k"}
		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(property, nil)
		mockStorage.On("GenerateDownloadURL", mock.Anything, "properties/prop-1/k").Return("https://storage.example/get", nil)

		url, err := svc.DownloadURL(ctx, "prop-1", "properties/prop-1/k")
		require.NoError(t, err)
		assert.Equal(t, "https://storage.example/get", url)
	})

	t.Run("unknown photo key", func(t *testing.T) {
		mockRepo := new(MockPropertyRepository)
		mockStorage := new(MockStorageClient)
		svc := NewPhotoService(mockRepo, mockStorage)

		mockRepo.On("GetByID", mock.Anything, "prop-1").Return(activeProperty("prop-1", "agent-1"), nil)

		_, err := svc.DownloadURL(ctx, "prop-1", "properties/prop-1/other")
		assert.ErrorIs(t, err, domain.ErrPhotoNotFound)
	})
}
