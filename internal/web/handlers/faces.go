package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/faceforge/faceforge/internal/store"
	"github.com/go-chi/chi/v5"
)

// FacesHandler handles single-face endpoints.
type FacesHandler struct {
	service *clustering.Service
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(service *clustering.Service) *FacesHandler {
	return &FacesHandler{service: service}
}

// faceResponse is the wire shape of one face. The embedding is not
// exposed over the API.
type faceResponse struct {
	ID            string            `json:"id"`
	ImageID       string            `json:"image_id"`
	ClusterID     string            `json:"cluster_id"`
	FacialArea    store.BoundingBox `json:"facial_area"`
	IsAutoMatched bool              `json:"is_auto_matched"`
}

func newFaceResponse(face *store.Face) faceResponse {
	return faceResponse{
		ID:            face.ID,
		ImageID:       face.ImageID,
		ClusterID:     face.ClusterID,
		FacialArea:    face.BBox,
		IsAutoMatched: face.IsAutoMatched,
	}
}

// Get returns a single face.
func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	faceID := chi.URLParam(r, "faceID")

	face, err := h.service.GetFace(r.Context(), tenantID, faceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newFaceResponse(face))
}

// Delete removes a single face.
func (h *FacesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	faceID := chi.URLParam(r, "faceID")

	if err := h.service.DeleteFace(r.Context(), tenantID, faceID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type reassignRequest struct {
	ToClusterID string `json:"to_cluster_id"`
}

// Reassign moves a face to a different cluster, used when a human
// corrects an automatic match.
func (h *FacesHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	faceID := chi.URLParam(r, "faceID")

	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ReassignFaceCluster(r.Context(), tenantID, faceID, req.ToClusterID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
