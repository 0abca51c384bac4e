package clustering

import (
	"context"
	"errors"
	"testing"

	"github.com/faceforge/faceforge/internal/store"
	"github.com/faceforge/faceforge/internal/store/mock"
)

func TestListReviewPendingOrderAndPagination(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, seedReview(t, st, "tenant-a", "cluster-1"))
	}
	seedReview(t, st, "tenant-b", "cluster-9")

	entries, err := svc.ListReviewPending(context.Background(), "tenant-a", 0, 0)
	if err != nil {
		t.Fatalf("ListReviewPending failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.ID != ids[i] {
			t.Errorf("entry %d has id %d, want %d (creation order)", i, entry.ID, ids[i])
		}
	}

	page, err := svc.ListReviewPending(context.Background(), "tenant-a", 2, 2)
	if err != nil {
		t.Fatalf("ListReviewPending failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected a page of 2, got %d", len(page))
	}
	if page[0].ID != ids[2] || page[1].ID != ids[3] {
		t.Errorf("unexpected page contents: %v", page)
	}

	empty, err := svc.ListReviewPending(context.Background(), "tenant-a", 50, 10)
	if err != nil {
		t.Fatalf("ListReviewPending failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected an empty page past the end, got %d entries", len(empty))
	}
}

func TestGetReviewPending(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	id := seedReview(t, st, "tenant-a", "cluster-1")

	entry, err := svc.GetReviewPending(context.Background(), "tenant-a", id)
	if err != nil {
		t.Fatalf("GetReviewPending failed: %v", err)
	}
	if entry.ClusterID != "cluster-1" {
		t.Errorf("cluster = %q, want cluster-1", entry.ClusterID)
	}

	if _, err := svc.GetReviewPending(context.Background(), "tenant-a", 999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}
	// Review entries are tenant scoped.
	if _, err := svc.GetReviewPending(context.Background(), "tenant-b", id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("wrong tenant: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReviewPendingLeavesClusterAlone(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-1", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	id := seedReview(t, st, "tenant-a", "cluster-1")

	if err := svc.DeleteReviewPending(context.Background(), "tenant-a", id); err != nil {
		t.Fatalf("DeleteReviewPending failed: %v", err)
	}

	if got := len(st.Reviews("tenant-a")); got != 0 {
		t.Errorf("expected the entry to be gone, got %d", got)
	}
	if got := len(st.Faces("tenant-a")); got != 1 {
		t.Errorf("resolving a review must not touch faces, got %d", got)
	}

	err := svc.DeleteReviewPending(context.Background(), "tenant-a", id)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReassignFaceCluster(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-1", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	seedReview(t, st, "tenant-a", "cluster-1")

	if err := svc.ReassignFaceCluster(context.Background(), "tenant-a", "face-1", "cluster-2"); err != nil {
		t.Fatalf("ReassignFaceCluster failed: %v", err)
	}

	faces := st.Faces("tenant-a")
	if faces[0].ClusterID != "cluster-2" {
		t.Errorf("cluster = %q, want cluster-2", faces[0].ClusterID)
	}
	// Reassignment has no review side effects.
	if got := len(st.Reviews("tenant-a")); got != 1 {
		t.Errorf("expected the review entry to remain, got %d", got)
	}
}

func TestReassignFaceClusterErrors(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)
	ctx := context.Background()

	if err := svc.ReassignFaceCluster(ctx, "tenant-a", "face-1", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty target: expected ErrValidation, got %v", err)
	}
	if err := svc.ReassignFaceCluster(ctx, "tenant-a", "missing", "cluster-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown face: expected ErrNotFound, got %v", err)
	}
}

func TestGetClusterStats(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-1", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-2", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-3", ImageID: "img-2",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})

	stats, err := svc.GetClusterStats(context.Background(), "tenant-a", "cluster-1")
	if err != nil {
		t.Fatalf("GetClusterStats failed: %v", err)
	}
	if stats.FaceCount != 3 {
		t.Errorf("face count = %d, want 3", stats.FaceCount)
	}
	if stats.ImageCount != 2 {
		t.Errorf("image count = %d, want 2", stats.ImageCount)
	}

	if _, err := svc.GetClusterStats(context.Background(), "tenant-a", "empty"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cluster without faces: expected ErrNotFound, got %v", err)
	}
}

func TestGetImageDetails(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	seedImage(t, st, store.Image{TenantID: "tenant-a", ID: "img-1", PHash: "cafe"})
	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-1", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-2", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})

	details, err := svc.GetImage(context.Background(), "tenant-a", "img-1")
	if err != nil {
		t.Fatalf("GetImage failed: %v", err)
	}
	if len(details.FaceIDs) != 2 {
		t.Errorf("face ids = %v, want 2 entries", details.FaceIDs)
	}
	if len(details.ClusterIDs) != 1 {
		t.Errorf("cluster ids = %v, want 1 distinct entry", details.ClusterIDs)
	}
	if details.PHash != "cafe" {
		t.Errorf("phash = %q, want cafe", details.PHash)
	}

	if _, err := svc.GetImage(context.Background(), "tenant-a", "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrphanReviews(t *testing.T) {
	st := mock.New()
	svc := newTestService(st, nil)

	seedFace(t, st, store.Face{
		TenantID: "tenant-a", ID: "face-1", ImageID: "img-1",
		ClusterID: "cluster-1", Embedding: []float32{1, 0, 0},
	})
	seedReview(t, st, "tenant-a", "cluster-1")
	orphanID := seedReview(t, st, "tenant-a", "cluster-gone")

	orphans, err := svc.OrphanReviews(context.Background())
	if err != nil {
		t.Fatalf("OrphanReviews failed: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("expected 1 orphan, got %d", len(orphans))
	}
	if orphans[0].ID != orphanID {
		t.Errorf("orphan id = %d, want %d", orphans[0].ID, orphanID)
	}
}
