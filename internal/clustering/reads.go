package clustering

import (
	"context"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
)

// GetFace fetches a single face.
func (s *Service) GetFace(ctx context.Context, tenantID, faceID string) (*store.Face, error) {
	var face *store.Face
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		face, err = tx.GetFace(ctx, tenantID, faceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return face, nil
}

// GetClusterStats returns derived counts for a cluster. A cluster exists
// only through its faces, so zero faces means not found.
func (s *Service) GetClusterStats(ctx context.Context, tenantID, clusterID string) (*store.ClusterStats, error) {
	var stats *store.ClusterStats
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		stats, err = tx.ClusterStats(ctx, tenantID, clusterID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if stats.FaceCount == 0 {
		return nil, fmt.Errorf("cluster %q: %w", clusterID, store.ErrNotFound)
	}
	return stats, nil
}

// GetImage fetches an image with its faces and clusters.
func (s *Service) GetImage(ctx context.Context, tenantID, imageID string) (*store.ImageDetails, error) {
	var details *store.ImageDetails
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		details, err = tx.GetImage(ctx, tenantID, imageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListFacesForImage returns the faces of one image, paginated, in stable
// id order. An unknown image yields an empty list.
func (s *Service) ListFacesForImage(ctx context.Context, tenantID, imageID string, skip, limit int) ([]store.Face, error) {
	skip, limit = normalizePage(skip, limit)

	var faces []store.Face
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		faces, err = tx.ListFacesByImage(ctx, tenantID, imageID, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return faces, nil
}

// OrphanReviews returns pending entries, across all tenants, whose
// cluster no longer has any faces. Used by the cleanup-reviews command.
func (s *Service) OrphanReviews(ctx context.Context) ([]store.ReviewEntry, error) {
	var entries []store.ReviewEntry
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		entries, err = tx.ListOrphanReviewEntries(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
