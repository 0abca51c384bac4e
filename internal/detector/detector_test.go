package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faceforge/faceforge/internal/config"
)

func newMockService(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.DetectorConfig{URL: srv.URL, TimeoutSeconds: 5}), srv
}

func TestDetect(t *testing.T) {
	var gotPath string
	client, _ := newMockService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected a multipart request: %v", err)
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("expected an image file field: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success":         true,
			"image_embedding": []float32{0.1, 0.2},
			"faces": []map[string]any{
				{"x": 5, "y": 6, "w": 7, "h": 8, "confidence": 0.97, "embedding": []float32{1, 0}},
			},
		})
	})

	result, err := client.Detect(context.Background(), []byte("fake image bytes"))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if gotPath != "/detect" {
		t.Errorf("request path = %q, want /detect", gotPath)
	}
	if len(result.ImageEmbedding) != 2 {
		t.Errorf("image embedding = %v", result.ImageEmbedding)
	}
	if len(result.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(result.Faces))
	}
	face := result.Faces[0]
	if face.X != 5 || face.H != 8 || face.Confidence != 0.97 {
		t.Errorf("unexpected face: %+v", face)
	}
}

func TestDetectServiceError(t *testing.T) {
	client, _ := newMockService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	if _, err := client.Detect(context.Background(), []byte("img")); err == nil {
		t.Error("expected an error on a 500 response")
	}
}

func TestDetectReportedFailure(t *testing.T) {
	client, _ := newMockService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "no face pipeline available",
		})
	})

	if _, err := client.Detect(context.Background(), []byte("img")); err == nil {
		t.Error("expected an error when the service reports failure")
	}
}

func TestDetectUnreachable(t *testing.T) {
	client := NewClient(&config.DetectorConfig{URL: "http://127.0.0.1:1", TimeoutSeconds: 1})
	if _, err := client.Detect(context.Background(), []byte("img")); err == nil {
		t.Error("expected an error when the service is unreachable")
	}
}
