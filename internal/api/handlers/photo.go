package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/casavia/casavia/internal/api"
	"github.com/casavia/casavia/internal/api/middleware"
	"github.com/casavia/casavia/internal/service"
	"github.com/go-chi/chi/v5"
)

type PhotoService interface {
	InitUpload(ctx context.Context, input service.InitPhotoUploadInput) (*service.InitPhotoUploadResult, error)
	CompleteUpload(ctx context.Context, input service.CompletePhotoUploadInput) error
	DownloadURL(ctx context.Context, propertyID, storageKey string) (string, error)
}

type PhotoHandler struct {
	svc PhotoService
}

func NewPhotoHandler(svc PhotoService) *PhotoHandler {
	return &PhotoHandler{svc: svc}
}

type InitPhotoUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type InitPhotoUploadResponse struct {
	StorageKey string `json:"storageKey"`
	UploadURL  string `json:"uploadUrl"`
}

func (h *PhotoHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		api.Error(w, http.StatusBadRequest, "property id is required")
		return
	}

	var req InitPhotoUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}
	if req.ContentType == "" {
		api.Error(w, http.StatusBadRequest, "contentType is required")
		return
	}

	result, err := h.svc.InitUpload(r.Context(), service.InitPhotoUploadInput{
		PropertyID:  propertyID,
		AgentID:     agentID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, InitPhotoUploadResponse{
		StorageKey: result.StorageKey,
		UploadURL:  result.UploadURL,
	})
}

type CompletePhotoUploadRequest struct {
	StorageKey string `json:"storageKey"`
}

func (h *PhotoHandler) CompleteUpload(w http.ResponseWriter, r *http.Request) {
	agentID := middleware.GetAgentID(r.Context())
	if agentID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		api.Error(w, http.StatusBadRequest, "property id is required")
		return
	}

	var req CompletePhotoUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.StorageKey == "" {
		api.Error(w, http.StatusBadRequest, "storageKey is required")
		return
	}

	if err := h.svc.CompleteUpload(r.Context(), service.CompletePhotoUploadInput{
		PropertyID: propertyID,
		AgentID:    agentID,
		StorageKey: req.StorageKey,
	}); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"status": "attached"})
}

type PhotoDownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// GetDownloadURL is public; photo keys are only discoverable through the
// listing itself.
func (h *PhotoHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "id")
	if propertyID == "" {
		api.Error(w, http.StatusBadRequest, "property id is required")
		return
	}

	storageKey := r.URL.Query().Get("key")
	if storageKey == "" {
		api.Error(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), propertyID, storageKey)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, PhotoDownloadResponse{DownloadURL: url})
}
