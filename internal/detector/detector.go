// Package detector is the boundary to the external face analysis service.
// The service decodes an image, detects faces and returns one embedding
// per face plus an embedding of the whole frame. Detection quality and
// the embedding model are entirely the service's concern.
package detector

import "context"

// DetectedFace is a single face found in an image.
type DetectedFace struct {
	// Bounding box in pixel coordinates
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`

	// Detection confidence in [0, 1]
	Confidence float64 `json:"confidence"`

	// Face embedding, fixed length per model (128 for Facenet)
	Embedding []float32 `json:"embedding"`
}

// Result is the full analysis of one image.
type Result struct {
	// ImageEmbedding is an embedding of the whole frame, used for
	// image-level similarity. May be empty if the service skips it.
	ImageEmbedding []float32 `json:"image_embedding"`

	// Faces are the detections, in the order the service returned them.
	// That order is significant: the clustering pipeline processes faces
	// of one image strictly in this order.
	Faces []DetectedFace `json:"faces"`
}

// Provider analyzes images. A failed analysis is a hard error for the
// whole ingestion; there is no partial result.
type Provider interface {
	Detect(ctx context.Context, imageData []byte) (*Result, error)
}
