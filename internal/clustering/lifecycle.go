package clustering

import (
	"context"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
)

// DeleteImage removes an image and every face detected in it. Other
// images and clusters of the tenant are untouched; a cluster emptied by
// this delete keeps its pending review entry (the reviewer treats a
// missing cluster as already resolved).
func (s *Service) DeleteImage(ctx context.Context, tenantID, imageID string) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.DeleteFacesByImage(ctx, tenantID, imageID); err != nil {
			return err
		}
		n, err := tx.DeleteImage(ctx, tenantID, imageID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("image %q: %w", imageID, store.ErrNotFound)
		}
		return nil
	})
}

// DeleteFace removes a single face. If it was the last face of its
// cluster the cluster ceases to exist implicitly; any pending review
// entry for it becomes an orphan (see the cleanup-reviews command).
func (s *Service) DeleteFace(ctx context.Context, tenantID, faceID string) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.DeleteFace(ctx, tenantID, faceID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("face %q: %w", faceID, store.ErrNotFound)
		}
		return nil
	})
}

// DeleteCluster removes every face of the cluster, every image that
// contained at least one of those faces, and the cluster's pending
// review entry. Images are reachable from a cluster only through its
// faces, so the image set is derived before the faces are deleted.
// Faces of other clusters are never removed, even when their image is.
func (s *Service) DeleteCluster(ctx context.Context, tenantID, clusterID string) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		imageIDs, err := tx.ClusterImageIDs(ctx, tenantID, clusterID)
		if err != nil {
			return err
		}
		if len(imageIDs) == 0 {
			// A cluster is its faces; no faces means no cluster.
			return fmt.Errorf("cluster %q: %w", clusterID, store.ErrNotFound)
		}

		if _, err := tx.DeleteFacesByCluster(ctx, tenantID, clusterID); err != nil {
			return err
		}
		if _, err := tx.DeleteImagesByIDs(ctx, tenantID, imageIDs); err != nil {
			return err
		}
		if _, err := tx.DeleteReviewsByCluster(ctx, tenantID, clusterID); err != nil {
			return err
		}
		return nil
	})
}

// DeleteTenant removes every face, image and pending review entry of the
// tenant. The teardown is idempotent: deleting an unknown tenant is not
// an error.
func (s *Service) DeleteTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", ErrValidation)
	}
	return s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.DeleteFacesByTenant(ctx, tenantID); err != nil {
			return err
		}
		if _, err := tx.DeleteImagesByTenant(ctx, tenantID); err != nil {
			return err
		}
		if _, err := tx.DeleteReviewsByTenant(ctx, tenantID); err != nil {
			return err
		}
		return nil
	})
}
