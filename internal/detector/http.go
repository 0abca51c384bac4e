package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/faceforge/faceforge/internal/config"
)

// Client talks to the face analysis HTTP service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// detectResponse is the wire format of the service's /detect endpoint.
type detectResponse struct {
	Success        bool           `json:"success"`
	ImageEmbedding []float32      `json:"image_embedding"`
	Faces          []DetectedFace `json:"faces"`
	Error          string         `json:"error,omitempty"`
}

// NewClient creates a face analysis client from config.
func NewClient(cfg *config.DetectorConfig) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second // detection can take time, especially on CPU
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Detect sends the image to the analysis service and returns its faces
// and whole-frame embedding.
func (c *Client) Detect(ctx context.Context, imageData []byte) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call face analysis service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face analysis service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result detectResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("face analysis failed: %s", result.Error)
	}

	return &Result{
		ImageEmbedding: result.ImageEmbedding,
		Faces:          result.Faces,
	}, nil
}

var _ Provider = (*Client)(nil)
