package config

// Defaults for the clustering pipeline. The values come from the Facenet
// deployment this service was built against and can be overridden per
// process through environment variables (see Load).
const (
	// DefaultMinFaceConfidence is the minimum detector confidence for a face
	// to be persisted. Detections below it are dropped silently.
	DefaultMinFaceConfidence = 0.9

	// DefaultSimilarityThreshold is the maximum cosine distance at which two
	// face embeddings are considered the same identity.
	DefaultSimilarityThreshold = 0.85

	// DefaultEmbeddingDim is the embedding vector length (Facenet).
	DefaultEmbeddingDim = 128

	// DefaultEmbeddingModel is the models.yaml entry used when
	// EMBEDDING_MODEL is unset.
	DefaultEmbeddingModel = "facenet"

	// DuplicateHammingDistance is the maximum Hamming distance between two
	// perceptual hashes for the images to count as near-duplicates. Both
	// pHash and dHash must agree within this distance.
	DuplicateHammingDistance = 10
)

// Pagination limits for list endpoints.
const (
	// DefaultPageSize is the number of rows returned when no limit is given.
	DefaultPageSize = 10

	// MaxPageSize caps the limit a caller may request.
	MaxPageSize = 100
)
