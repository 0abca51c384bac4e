package clustering

import (
	"context"
	"fmt"

	"github.com/faceforge/faceforge/internal/store"
)

// Outcome is the result of a matching decision for one candidate face.
// When Matched is false the caller mints a new cluster.
type Outcome struct {
	Matched   bool
	ClusterID string  // cluster of the nearest face, when matched
	FaceID    string  // the nearest face itself, for audit logging
	Distance  float64 // cosine distance to the nearest face, when matched
}

// Matcher decides cluster membership for candidate face embeddings. It is
// a pure decision function over store state at call time: it never writes.
//
// The decision is deterministic. The store's nearest-neighbor query breaks
// distance ties by lowest face id, so retries over identical state always
// resolve to the same cluster.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher with the given maximum cosine distance.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Match finds the nearest stored face of the tenant and compares its
// distance against the threshold. A tenant with no faces, or whose
// closest face is farther than the threshold, yields a no-match outcome.
func (m *Matcher) Match(ctx context.Context, tx store.Tx, tenantID string, embedding []float32) (Outcome, error) {
	nearest, err := tx.NearestFace(ctx, tenantID, embedding)
	if err != nil {
		return Outcome{}, fmt.Errorf("nearest face lookup: %w", err)
	}
	if nearest == nil || nearest.Distance > m.threshold {
		return Outcome{}, nil
	}
	return Outcome{
		Matched:   true,
		ClusterID: nearest.ClusterID,
		FaceID:    nearest.FaceID,
		Distance:  nearest.Distance,
	}, nil
}
