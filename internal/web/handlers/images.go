package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/faceforge/faceforge/internal/clustering"
	"github.com/go-chi/chi/v5"
)

// ImagesHandler handles image ingestion and lookup endpoints.
type ImagesHandler struct {
	service *clustering.Service
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(service *clustering.Service) *ImagesHandler {
	return &ImagesHandler{service: service}
}

// Ingest handles a multipart image upload: the image is analyzed, its
// faces are clustered, and the minted ids are returned.
func (h *ImagesHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image file")
		return
	}

	result, err := h.service.Ingest(r.Context(), tenantID, imageData)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("ingested image %s for tenant %s with %d faces",
		result.ImageID, sanitizeForLog(tenantID), len(result.Faces))
	respondJSON(w, http.StatusOK, result)
}

// Get returns an image with its face ids, cluster ids and perceptual hash.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	imageID := chi.URLParam(r, "imageID")

	details, err := h.service.GetImage(r.Context(), tenantID, imageID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"face_ids":    emptyIfNil(details.FaceIDs),
		"cluster_ids": emptyIfNil(details.ClusterIDs),
		"phash":       details.PHash,
	})
}

// Delete removes an image and all faces detected in it.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	imageID := chi.URLParam(r, "imageID")

	if err := h.service.DeleteImage(r.Context(), tenantID, imageID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ListFaces returns the faces of one image, paginated.
func (h *ImagesHandler) ListFaces(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	imageID := chi.URLParam(r, "imageID")
	skip, limit := pagination(r)

	faces, err := h.service.ListFacesForImage(r.Context(), tenantID, imageID, skip, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]faceResponse, 0, len(faces))
	for _, face := range faces {
		out = append(out, newFaceResponse(&face))
	}
	respondJSON(w, http.StatusOK, out)
}

// emptyIfNil keeps JSON list fields as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
