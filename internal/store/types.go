package store

import (
	"time"
)

// BoundingBox is the facial area of a detection in pixel coordinates.
// It is persisted as structured JSON alongside the face row.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Image represents an ingested image.
type Image struct {
	TenantID  string
	ID        string
	PHash     string    // perceptual hash, hex string
	DHash     string    // difference hash, hex string
	Embedding []float32 // optional whole-image embedding, nil when absent
	CreatedAt time.Time
}

// ImageFingerprint carries just the perceptual hashes of one image, used
// by the near-duplicate scan at ingest time.
type ImageFingerprint struct {
	ImageID string
	PHash   string
	DHash   string
}

// Face represents a single detected face. Faces sharing a ClusterID within
// a tenant form a cluster; the cluster has no storage of its own.
type Face struct {
	TenantID      string
	ID            string
	ImageID       string
	ClusterID     string
	BBox          BoundingBox
	IsAutoMatched bool
	Embedding     []float32
	CreatedAt     time.Time
}

// ReviewEntry marks a cluster as awaiting human confirmation. Exactly one
// entry is created per cluster, at the moment the cluster is minted.
type ReviewEntry struct {
	ID        int64
	TenantID  string
	ClusterID string
	CreatedAt time.Time
}

// ClusterStats are derived counts over the faces of one cluster.
type ClusterStats struct {
	FaceCount  int
	ImageCount int // distinct images containing at least one face of the cluster
}

// ImageDetails is the read model for a single image: its faces, the
// distinct clusters they belong to, and the perceptual hash.
type ImageDetails struct {
	FaceIDs    []string
	ClusterIDs []string
	PHash      string
}

// NearestFace is the result of a nearest-neighbor query over face
// embeddings within one tenant.
type NearestFace struct {
	FaceID    string
	ClusterID string
	Distance  float64
}
