package handlers

import (
	"net/http"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/go-chi/chi/v5"
)

// ClustersHandler handles identity cluster endpoints.
type ClustersHandler struct {
	service *clustering.Service
}

// NewClustersHandler creates a new clusters handler.
func NewClustersHandler(service *clustering.Service) *ClustersHandler {
	return &ClustersHandler{service: service}
}

// GetStats returns face and image counts for a cluster.
func (h *ClustersHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	clusterID := chi.URLParam(r, "clusterID")

	stats, err := h.service.GetClusterStats(r.Context(), tenantID, clusterID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":          clusterID,
		"face_count":  stats.FaceCount,
		"image_count": stats.ImageCount,
	})
}

// Delete removes a cluster together with its faces, the images those
// faces came from, and its pending review entries.
func (h *ClustersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	clusterID := chi.URLParam(r, "clusterID")

	if err := h.service.DeleteCluster(r.Context(), tenantID, clusterID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
