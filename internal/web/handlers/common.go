package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/faceforge/faceforge/internal/store"
)

// maxUploadSize bounds multipart upload parsing (32 MB).
const maxUploadSize = 32 << 20

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service error kinds to HTTP statuses. Anything
// not matching a known sentinel is a storage failure: the unit of work
// was rolled back and the caller may retry.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, clustering.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, clustering.ErrProvider):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("storage failure: %v", err)
		respondError(w, http.StatusInternalServerError, "storage failure, request rolled back")
	}
}

// requireTenant extracts the tenant_id parameter (query or form) and
// rejects the request when it is missing.
func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := r.FormValue("tenant_id")
	if tenantID == "" {
		respondError(w, http.StatusBadRequest, "tenant_id is required")
		return "", false
	}
	return tenantID, true
}

// pagination parses optional skip/limit query parameters. Invalid values
// fall back to zero; the service clamps them to its defaults.
func pagination(r *http.Request) (skip, limit int) {
	skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return skip, limit
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
