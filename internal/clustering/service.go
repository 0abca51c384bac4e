// Package clustering implements incremental identity clustering over
// detected faces: each new face either joins the cluster of its nearest
// stored neighbor or seeds a new cluster with a pending review entry.
package clustering

import (
	"context"
	"fmt"
	"log"

	"github.com/faceforge/faceforge/internal/config"
	"github.com/faceforge/faceforge/internal/detector"
	"github.com/faceforge/faceforge/internal/fingerprint"
	"github.com/faceforge/faceforge/internal/store"
	"github.com/google/uuid"
)

// Service coordinates ingestion, lifecycle and review operations. Every
// public method runs as one atomic unit of work against the store.
type Service struct {
	store         store.Store
	provider      detector.Provider
	matcher       *Matcher
	minConfidence float64
	embeddingDim  int
}

// NewService creates the clustering service.
func NewService(st store.Store, provider detector.Provider, cfg *config.MatchingConfig) *Service {
	return &Service{
		store:         st,
		provider:      provider,
		matcher:       NewMatcher(cfg.Threshold),
		minConfidence: cfg.MinConfidence,
		embeddingDim:  cfg.EmbeddingDim,
	}
}

// IngestResult reports the minted image id and the cluster assignment of
// every persisted face. DuplicateOf names an earlier image of the tenant
// whose perceptual hashes are close to this upload; the image is stored
// regardless, the flag is advisory.
type IngestResult struct {
	ImageID     string            `json:"image_id"`
	Faces       map[string]string `json:"face_ids"` // face id -> cluster id
	DuplicateOf string            `json:"duplicate_of,omitempty"`
}

// Ingest analyzes an uploaded image and persists it with its faces.
// Detections below the confidence minimum are dropped silently. Each
// accepted face either joins the cluster of its nearest neighbor within
// the threshold, or seeds a new cluster with exactly one pending review
// entry. All writes happen in one transaction: a provider or store
// failure persists nothing.
//
// Faces are processed strictly in provider order, and matching runs
// inside the same transaction, so two faces of the same new person in
// one image cluster together: the first seeds the cluster, the second
// matches it.
func (s *Service) Ingest(ctx context.Context, tenantID string, imageData []byte) (*IngestResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrValidation)
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: image data is empty", ErrValidation)
	}

	hashes, err := fingerprint.ComputeHashes(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	// The provider call happens before the unit of work opens: a provider
	// failure aborts the ingestion with nothing written and no
	// transaction held across the network call.
	analysis, err := s.provider.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, err)
	}
	if err := s.checkDimensions(analysis); err != nil {
		return nil, err
	}

	result := &IngestResult{
		ImageID: uuid.NewString(),
		Faces:   make(map[string]string),
	}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		known, err := tx.ListImageFingerprints(ctx, tenantID)
		if err != nil {
			return err
		}
		result.DuplicateOf = findDuplicate(known, hashes)

		img := store.Image{
			TenantID:  tenantID,
			ID:        result.ImageID,
			PHash:     hashes.PHash,
			DHash:     hashes.DHash,
			Embedding: analysis.ImageEmbedding,
		}
		if err := tx.InsertImage(ctx, img); err != nil {
			return err
		}

		for _, candidate := range analysis.Faces {
			if candidate.Confidence < s.minConfidence {
				continue
			}

			outcome, err := s.matcher.Match(ctx, tx, tenantID, candidate.Embedding)
			if err != nil {
				return err
			}

			faceID := uuid.NewString()
			clusterID := outcome.ClusterID
			if outcome.Matched {
				log.Printf("matched face %s with %s at distance %f", faceID, outcome.FaceID, outcome.Distance)
			} else {
				clusterID = uuid.NewString()
			}

			face := store.Face{
				TenantID:  tenantID,
				ID:        faceID,
				ImageID:   result.ImageID,
				ClusterID: clusterID,
				BBox: store.BoundingBox{
					X: candidate.X,
					Y: candidate.Y,
					W: candidate.W,
					H: candidate.H,
				},
				// Recorded as true on both paths, matching the observed
				// behavior of the system this one replaces.
				IsAutoMatched: true,
				Embedding:     candidate.Embedding,
			}
			if err := tx.InsertFace(ctx, face); err != nil {
				return err
			}

			if !outcome.Matched {
				if _, err := tx.InsertReviewEntry(ctx, tenantID, clusterID); err != nil {
					return err
				}
			}

			result.Faces[faceID] = clusterID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// checkDimensions rejects provider output whose embeddings do not match
// the configured model dimension. A wrong-length vector would otherwise
// be persisted as-is and surface later as an opaque storage failure. A
// zero configured dimension disables the check.
func (s *Service) checkDimensions(analysis *detector.Result) error {
	if s.embeddingDim <= 0 {
		return nil
	}
	if len(analysis.ImageEmbedding) > 0 && len(analysis.ImageEmbedding) != s.embeddingDim {
		return fmt.Errorf("%w: image embedding has %d dimensions, model expects %d",
			ErrProvider, len(analysis.ImageEmbedding), s.embeddingDim)
	}
	for _, face := range analysis.Faces {
		if face.Confidence < s.minConfidence {
			continue
		}
		if len(face.Embedding) != s.embeddingDim {
			return fmt.Errorf("%w: face embedding has %d dimensions, model expects %d",
				ErrProvider, len(face.Embedding), s.embeddingDim)
		}
	}
	return nil
}

// findDuplicate returns the id of the first stored image whose pHash and
// dHash both lie within DuplicateHammingDistance of the upload, or the
// empty string. Requiring agreement of both hashes keeps the false
// positive rate low on busy tenants.
func findDuplicate(known []store.ImageFingerprint, hashes *fingerprint.HashResult) string {
	for _, fp := range known {
		pBits, err := fingerprint.ParseHash(fp.PHash)
		if err != nil {
			continue
		}
		dBits, err := fingerprint.ParseHash(fp.DHash)
		if err != nil {
			continue
		}
		if fingerprint.Similar(hashes.PHashBits, pBits, config.DuplicateHammingDistance) &&
			fingerprint.Similar(hashes.DHashBits, dBits, config.DuplicateHammingDistance) {
			return fp.ImageID
		}
	}
	return ""
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	return skip, limit
}
