package handlers

import (
	"net/http"
	"strconv"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/faceforge/faceforge/internal/store"
	"github.com/go-chi/chi/v5"
)

// ReviewsHandler handles the pending review queue.
type ReviewsHandler struct {
	service *clustering.Service
}

// NewReviewsHandler creates a new reviews handler.
func NewReviewsHandler(service *clustering.Service) *ReviewsHandler {
	return &ReviewsHandler{service: service}
}

type reviewResponse struct {
	ID        int64  `json:"id"`
	TenantID  string `json:"tenant_id"`
	ClusterID string `json:"cluster_id"`
}

func newReviewResponse(entry *store.ReviewEntry) reviewResponse {
	return reviewResponse{
		ID:        entry.ID,
		TenantID:  entry.TenantID,
		ClusterID: entry.ClusterID,
	}
}

// List returns a page of pending review entries in insertion order.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	skip, limit := pagination(r)

	entries, err := h.service.ListReviewPending(r.Context(), tenantID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	items := make([]reviewResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, newReviewResponse(&entry))
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get returns a single pending review entry.
func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	entry, err := h.service.GetReviewPending(r.Context(), tenantID, reviewID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newReviewResponse(entry))
}

// Delete acknowledges a pending review entry and removes it from the
// queue. Faces and clusters are untouched.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.service.DeleteReviewPending(r.Context(), tenantID, reviewID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
