package handlers

import (
	"net/http"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/go-chi/chi/v5"
)

// TenantsHandler handles tenant-level operations.
type TenantsHandler struct {
	service *clustering.Service
}

// NewTenantsHandler creates a new tenants handler.
func NewTenantsHandler(service *clustering.Service) *TenantsHandler {
	return &TenantsHandler{service: service}
}

// Delete removes every image, face and pending review entry that
// belongs to a tenant. Deleting a tenant with no data succeeds.
func (h *TenantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	if err := h.service.DeleteTenant(r.Context(), tenantID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
