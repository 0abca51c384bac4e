package clustering

import (
	"context"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
)

// ListReviewPending returns the tenant's pending review entries in
// creation order, paginated.
func (s *Service) ListReviewPending(ctx context.Context, tenantID string, skip, limit int) ([]store.ReviewEntry, error) {
	skip, limit = normalizePage(skip, limit)

	var entries []store.ReviewEntry
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		entries, err = tx.ListReviewEntries(ctx, tenantID, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetReviewPending fetches one pending review entry.
func (s *Service) GetReviewPending(ctx context.Context, tenantID string, reviewID int64) (*store.ReviewEntry, error) {
	var entry *store.ReviewEntry
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		entry, err = tx.GetReviewEntry(ctx, tenantID, reviewID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteReviewPending resolves a pending review entry. The cluster and
// its faces are untouched.
func (s *Service) DeleteReviewPending(ctx context.Context, tenantID string, reviewID int64) error {
	return s.store.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.DeleteReviewEntry(ctx, tenantID, reviewID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("review entry %d: %w", reviewID, store.ErrNotFound)
		}
		return nil
	})
}

// ReassignFaceCluster moves a face to another cluster, used when a human
// corrects an automatic match. The target cluster is not validated: the
// reviewer may mint a fresh cluster id. No review entries are created or
// removed as a side effect.
func (s *Service) ReassignFaceCluster(ctx context.Context, tenantID, faceID, toClusterID string) error {
	if toClusterID == "" {
		return fmt.Errorf("%w: target cluster id is required", ErrValidation)
	}
	return s.store.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.UpdateFaceCluster(ctx, tenantID, faceID, toClusterID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("face %q: %w", faceID, store.ErrNotFound)
		}
		return nil
	})
}
