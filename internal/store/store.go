// Package store defines the tenant-scoped storage boundary for images,
// faces and review entries. Implementations must keep every operation
// scoped to a single tenant and compose all writes of one request into
// one atomic unit of work.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist for the
// given tenant. Identifier collisions across tenants never resolve.
var ErrNotFound = errors.New("not found")

// Store opens atomic units of work. Either every write made through the
// yielded Tx is durably applied, or none are: InTx commits when fn
// returns nil and rolls back on error or panic.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is one unit of work. Reads observe writes made earlier through the
// same Tx, so a face persisted early in a request is visible to
// nearest-neighbor queries issued later in that same request.
type Tx interface {
	InsertImage(ctx context.Context, img Image) error
	InsertFace(ctx context.Context, face Face) error
	// InsertReviewEntry creates a pending review marker for a cluster and
	// returns its sequence id.
	InsertReviewEntry(ctx context.Context, tenantID, clusterID string) (int64, error)

	// NearestFace returns the single closest face to the given embedding
	// among all faces of the tenant, by cosine distance, or nil when the
	// tenant has no faces. Ties are broken by lowest face id so repeated
	// calls over identical state return the same row.
	NearestFace(ctx context.Context, tenantID string, embedding []float32) (*NearestFace, error)

	GetImage(ctx context.Context, tenantID, imageID string) (*ImageDetails, error)
	// ListImageFingerprints returns the perceptual hashes of every image
	// of the tenant, in image id order.
	ListImageFingerprints(ctx context.Context, tenantID string) ([]ImageFingerprint, error)
	GetFace(ctx context.Context, tenantID, faceID string) (*Face, error)
	ListFacesByImage(ctx context.Context, tenantID, imageID string, skip, limit int) ([]Face, error)
	ClusterStats(ctx context.Context, tenantID, clusterID string) (*ClusterStats, error)
	// ClusterImageIDs returns the distinct images containing at least one
	// face of the cluster. Image ownership is transitive through faces;
	// there is no cluster column on images.
	ClusterImageIDs(ctx context.Context, tenantID, clusterID string) ([]string, error)

	UpdateFaceCluster(ctx context.Context, tenantID, faceID, toClusterID string) (int64, error)

	DeleteImage(ctx context.Context, tenantID, imageID string) (int64, error)
	DeleteFace(ctx context.Context, tenantID, faceID string) (int64, error)
	DeleteFacesByImage(ctx context.Context, tenantID, imageID string) (int64, error)
	DeleteFacesByCluster(ctx context.Context, tenantID, clusterID string) (int64, error)
	DeleteImagesByIDs(ctx context.Context, tenantID string, imageIDs []string) (int64, error)
	DeleteFacesByTenant(ctx context.Context, tenantID string) (int64, error)
	DeleteImagesByTenant(ctx context.Context, tenantID string) (int64, error)
	DeleteReviewsByTenant(ctx context.Context, tenantID string) (int64, error)
	DeleteReviewsByCluster(ctx context.Context, tenantID, clusterID string) (int64, error)

	GetReviewEntry(ctx context.Context, tenantID string, reviewID int64) (*ReviewEntry, error)
	ListReviewEntries(ctx context.Context, tenantID string, skip, limit int) ([]ReviewEntry, error)
	DeleteReviewEntry(ctx context.Context, tenantID string, reviewID int64) (int64, error)

	// ListOrphanReviewEntries returns pending entries, across all tenants,
	// whose cluster no longer has any faces. Used by the cleanup command.
	ListOrphanReviewEntries(ctx context.Context) ([]ReviewEntry, error)
}
