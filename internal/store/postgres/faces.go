package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
	"github.com/pgvector/pgvector-go"
)

// InsertFace persists a face row with its bounding box as JSON.
func (t *Tx) InsertFace(ctx context.Context, face store.Face) error {
	bbox, err := json.Marshal(face.BBox)
	if err != nil {
		return fmt.Errorf("marshal facial area: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO faces (tenant_id, id, image_id, cluster_id, facial_area, is_auto_matched, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, face.TenantID, face.ID, face.ImageID, face.ClusterID, bbox, face.IsAutoMatched, pgvector.NewVector(face.Embedding))
	if err != nil {
		return fmt.Errorf("insert face: %w", err)
	}
	return nil
}

// NearestFace returns the closest face of the tenant by cosine distance,
// or nil when the tenant has no faces. Equidistant candidates are resolved
// by lowest face id so retries over identical state match the same row.
func (t *Tx) NearestFace(ctx context.Context, tenantID string, embedding []float32) (*store.NearestFace, error) {
	query := `
		SELECT id, cluster_id, embedding <=> $2::vector AS distance
		FROM faces
		WHERE tenant_id = $1
		ORDER BY distance, id
		LIMIT 1
	`

	var nearest store.NearestFace
	err := t.tx.QueryRowContext(ctx, query, tenantID, pgvector.NewVector(embedding)).Scan(
		&nearest.FaceID,
		&nearest.ClusterID,
		&nearest.Distance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query nearest face: %w", err)
	}
	return &nearest, nil
}

// GetFace retrieves a single face row.
func (t *Tx) GetFace(ctx context.Context, tenantID, faceID string) (*store.Face, error) {
	query := `
		SELECT tenant_id, id, image_id, cluster_id, facial_area, is_auto_matched, embedding, created_at
		FROM faces
		WHERE tenant_id = $1 AND id = $2
	`

	face, err := scanFace(t.tx.QueryRowContext(ctx, query, tenantID, faceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query face: %w", err)
	}
	return face, nil
}

// ListFacesByImage retrieves the faces of one image, paginated, in stable
// id order.
func (t *Tx) ListFacesByImage(ctx context.Context, tenantID, imageID string, skip, limit int) ([]store.Face, error) {
	query := `
		SELECT tenant_id, id, image_id, cluster_id, facial_area, is_auto_matched, embedding, created_at
		FROM faces
		WHERE tenant_id = $1 AND image_id = $2
		ORDER BY id
		LIMIT $3 OFFSET $4
	`

	rows, err := t.tx.QueryContext(ctx, query, tenantID, imageID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("query faces by image: %w", err)
	}
	defer rows.Close()

	var faces []store.Face
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// ClusterStats returns derived counts for a cluster. A cluster with zero
// faces does not exist; callers decide how to surface that.
func (t *Tx) ClusterStats(ctx context.Context, tenantID, clusterID string) (*store.ClusterStats, error) {
	var stats store.ClusterStats
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(id), COUNT(DISTINCT image_id)
		FROM faces
		WHERE tenant_id = $1 AND cluster_id = $2
	`, tenantID, clusterID).Scan(&stats.FaceCount, &stats.ImageCount)
	if err != nil {
		return nil, fmt.Errorf("query cluster stats: %w", err)
	}
	return &stats, nil
}

// ClusterImageIDs returns the distinct images reachable from the cluster
// through its faces.
func (t *Tx) ClusterImageIDs(ctx context.Context, tenantID, clusterID string) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT DISTINCT image_id
		FROM faces
		WHERE tenant_id = $1 AND cluster_id = $2
	`, tenantID, clusterID)
	if err != nil {
		return nil, fmt.Errorf("query cluster images: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan image id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster images: %w", err)
	}
	return ids, nil
}

// UpdateFaceCluster moves a face to another cluster.
func (t *Tx) UpdateFaceCluster(ctx context.Context, tenantID, faceID, toClusterID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE faces SET cluster_id = $3 WHERE tenant_id = $1 AND id = $2",
		tenantID, faceID, toClusterID)
	if err != nil {
		return 0, fmt.Errorf("update face cluster: %w", err)
	}
	return res.RowsAffected()
}

// DeleteFace removes a single face row.
func (t *Tx) DeleteFace(ctx context.Context, tenantID, faceID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM faces WHERE tenant_id = $1 AND id = $2", tenantID, faceID)
	if err != nil {
		return 0, fmt.Errorf("delete face: %w", err)
	}
	return res.RowsAffected()
}

// DeleteFacesByImage removes every face detected in one image.
func (t *Tx) DeleteFacesByImage(ctx context.Context, tenantID, imageID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM faces WHERE tenant_id = $1 AND image_id = $2", tenantID, imageID)
	if err != nil {
		return 0, fmt.Errorf("delete faces by image: %w", err)
	}
	return res.RowsAffected()
}

// DeleteFacesByCluster removes every face of one cluster.
func (t *Tx) DeleteFacesByCluster(ctx context.Context, tenantID, clusterID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM faces WHERE tenant_id = $1 AND cluster_id = $2", tenantID, clusterID)
	if err != nil {
		return 0, fmt.Errorf("delete faces by cluster: %w", err)
	}
	return res.RowsAffected()
}

// DeleteFacesByTenant removes every face of the tenant.
func (t *Tx) DeleteFacesByTenant(ctx context.Context, tenantID string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM faces WHERE tenant_id = $1", tenantID)
	if err != nil {
		return 0, fmt.Errorf("delete faces by tenant: %w", err)
	}
	return res.RowsAffected()
}

// scanner abstracts sql.Row and sql.Rows for scanFace.
type scanner interface {
	Scan(dest ...any) error
}

func scanFace(row scanner) (*store.Face, error) {
	var face store.Face
	var bbox []byte
	var vec pgvector.Vector

	err := row.Scan(
		&face.TenantID,
		&face.ID,
		&face.ImageID,
		&face.ClusterID,
		&bbox,
		&face.IsAutoMatched,
		&vec,
		&face.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bbox, &face.BBox); err != nil {
		return nil, fmt.Errorf("unmarshal facial area: %w", err)
	}
	face.Embedding = vec.Slice()
	return &face, nil
}
