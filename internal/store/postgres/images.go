package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// InsertImage persists an image row. The whole-image embedding is optional
// and stored as NULL when absent.
func (t *Tx) InsertImage(ctx context.Context, img store.Image) error {
	var embedding any
	if img.Embedding != nil {
		embedding = pgvector.NewVector(img.Embedding)
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO images (tenant_id, id, phash, dhash, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`, img.TenantID, img.ID, img.PHash, img.DHash, embedding)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// ListImageFingerprints returns the perceptual hashes of every image of
// the tenant, in image id order.
func (t *Tx) ListImageFingerprints(ctx context.Context, tenantID string) ([]store.ImageFingerprint, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, phash, dhash
		FROM images
		WHERE tenant_id = $1
		ORDER BY id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query image fingerprints: %w", err)
	}
	defer rows.Close()

	var prints []store.ImageFingerprint
	for rows.Next() {
		var fp store.ImageFingerprint
		if err := rows.Scan(&fp.ImageID, &fp.PHash, &fp.DHash); err != nil {
			return nil, fmt.Errorf("scan image fingerprint: %w", err)
		}
		prints = append(prints, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image fingerprints: %w", err)
	}
	return prints, nil
}

// GetImage retrieves an image with its face ids and the distinct clusters
// those faces belong to.
func (t *Tx) GetImage(ctx context.Context, tenantID, imageID string) (*store.ImageDetails, error) {
	query := `
		SELECT
			ARRAY(SELECT id FROM faces WHERE tenant_id = $1 AND image_id = $2 ORDER BY id) AS face_ids,
			ARRAY(SELECT DISTINCT cluster_id FROM faces WHERE tenant_id = $1 AND image_id = $2) AS cluster_ids,
			phash
		FROM images
		WHERE tenant_id = $1 AND id = $2
	`

	var details store.ImageDetails
	var faceIDs, clusterIDs pq.StringArray

	err := t.tx.QueryRowContext(ctx, query, tenantID, imageID).Scan(&faceIDs, &clusterIDs, &details.PHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query image: %w", err)
	}

	details.FaceIDs = faceIDs
	details.ClusterIDs = clusterIDs
	return &details, nil
}

// DeleteImage removes a single image row.
func (t *Tx) DeleteImage(ctx context.Context, tenantID, imageID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM images WHERE tenant_id = $1 AND id = $2", tenantID, imageID)
	if err != nil {
		return 0, fmt.Errorf("delete image: %w", err)
	}
	return res.RowsAffected()
}

// DeleteImagesByIDs removes the given image rows within one tenant.
func (t *Tx) DeleteImagesByIDs(ctx context.Context, tenantID string, imageIDs []string) (int64, error) {
	if len(imageIDs) == 0 {
		return 0, nil
	}
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM images WHERE tenant_id = $1 AND id = ANY($2)", tenantID, pq.Array(imageIDs))
	if err != nil {
		return 0, fmt.Errorf("delete images by ids: %w", err)
	}
	return res.RowsAffected()
}

// DeleteImagesByTenant removes every image of the tenant.
func (t *Tx) DeleteImagesByTenant(ctx context.Context, tenantID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM images WHERE tenant_id = $1", tenantID)
	if err != nil {
		return 0, fmt.Errorf("delete images by tenant: %w", err)
	}
	return res.RowsAffected()
}
