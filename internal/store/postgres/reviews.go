package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
)

// InsertReviewEntry creates a pending review marker for a newly minted
// cluster and returns its sequence id.
func (t *Tx) InsertReviewEntry(ctx context.Context, tenantID, clusterID string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO review_pending (tenant_id, cluster_id)
		VALUES ($1, $2)
		RETURNING id
	`, tenantID, clusterID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert review entry: %w", err)
	}
	return id, nil
}

// GetReviewEntry retrieves a single pending review entry.
func (t *Tx) GetReviewEntry(ctx context.Context, tenantID string, reviewID int64) (*store.ReviewEntry, error) {
	var entry store.ReviewEntry
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, tenant_id, cluster_id, created_at
		FROM review_pending
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, reviewID).Scan(&entry.ID, &entry.TenantID, &entry.ClusterID, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query review entry: %w", err)
	}
	return &entry, nil
}

// ListReviewEntries retrieves pending review entries for one tenant,
// paginated, ordered by creation sequence.
func (t *Tx) ListReviewEntries(ctx context.Context, tenantID string, skip, limit int) ([]store.ReviewEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, tenant_id, cluster_id, created_at
		FROM review_pending
		WHERE tenant_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, tenantID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query review entries: %w", err)
	}
	defer rows.Close()

	return scanReviewEntries(rows)
}

// DeleteReviewEntry removes a pending review entry, marking it resolved.
func (t *Tx) DeleteReviewEntry(ctx context.Context, tenantID string, reviewID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM review_pending WHERE tenant_id = $1 AND id = $2", tenantID, reviewID)
	if err != nil {
		return 0, fmt.Errorf("delete review entry: %w", err)
	}
	return res.RowsAffected()
}

// DeleteReviewsByCluster removes the pending review entries of one cluster.
func (t *Tx) DeleteReviewsByCluster(ctx context.Context, tenantID, clusterID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM review_pending WHERE tenant_id = $1 AND cluster_id = $2", tenantID, clusterID)
	if err != nil {
		return 0, fmt.Errorf("delete review entries by cluster: %w", err)
	}
	return res.RowsAffected()
}

// DeleteReviewsByTenant removes every pending review entry of the tenant.
func (t *Tx) DeleteReviewsByTenant(ctx context.Context, tenantID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM review_pending WHERE tenant_id = $1", tenantID)
	if err != nil {
		return 0, fmt.Errorf("delete review entries by tenant: %w", err)
	}
	return res.RowsAffected()
}

// ListOrphanReviewEntries returns entries, across all tenants, whose
// cluster no longer has any faces.
func (t *Tx) ListOrphanReviewEntries(ctx context.Context) ([]store.ReviewEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT r.id, r.tenant_id, r.cluster_id, r.created_at
		FROM review_pending r
		WHERE NOT EXISTS (
			SELECT 1 FROM faces f
			WHERE f.tenant_id = r.tenant_id AND f.cluster_id = r.cluster_id
		)
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query orphan review entries: %w", err)
	}
	defer rows.Close()

	return scanReviewEntries(rows)
}

func scanReviewEntries(rows *sql.Rows) ([]store.ReviewEntry, error) {
	var entries []store.ReviewEntry
	for rows.Next() {
		var entry store.ReviewEntry
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.ClusterID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review entries: %w", err)
	}
	return entries, nil
}
