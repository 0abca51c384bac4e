//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/faceforge/faceforge/internal/config"
	"github.com/faceforge/faceforge/internal/store"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func embedding128(seed float32) []float32 {
	out := make([]float32, 128)
	for i := range out {
		out[i] = seed + float32(i)/128.0
	}
	return out
}

func insertFace(t *testing.T, pool *Pool, tenantID, faceID, imageID, clusterID string, embedding []float32) {
	t.Helper()
	ctx := context.Background()
	err := pool.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertFace(ctx, store.Face{
			TenantID:  tenantID,
			ID:        faceID,
			ImageID:   imageID,
			ClusterID: clusterID,
			BBox:      store.BoundingBox{X: 1, Y: 2, W: 3, H: 4},
			Embedding: embedding,
		})
	})
	if err != nil {
		t.Fatalf("Failed to insert face: %v", err)
	}
}

func insertImage(t *testing.T, pool *Pool, tenantID, imageID string) {
	t.Helper()
	ctx := context.Background()
	err := pool.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertImage(ctx, store.Image{
			TenantID: tenantID,
			ID:       imageID,
			PHash:    "deadbeefcafef00d",
			DHash:    "f00dcafedeadbeef",
		})
	})
	if err != nil {
		t.Fatalf("Failed to insert image: %v", err)
	}
}

func TestImageRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	insertImage(t, pool, "tenant-a", "img-1")
	insertFace(t, pool, "tenant-a", "face-1", "img-1", "cluster-1", embedding128(0))

	err := pool.InTx(ctx, func(tx store.Tx) error {
		details, err := tx.GetImage(ctx, "tenant-a", "img-1")
		if err != nil {
			return err
		}
		if details.PHash != "deadbeefcafef00d" {
			t.Errorf("phash = %q", details.PHash)
		}
		if len(details.FaceIDs) != 1 || details.FaceIDs[0] != "face-1" {
			t.Errorf("face ids = %v", details.FaceIDs)
		}
		if len(details.ClusterIDs) != 1 || details.ClusterIDs[0] != "cluster-1" {
			t.Errorf("cluster ids = %v", details.ClusterIDs)
		}

		_, err = tx.GetImage(ctx, "tenant-a", "missing")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestListImageFingerprints(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	insertImage(t, pool, "tenant-a", "img-2")
	insertImage(t, pool, "tenant-a", "img-1")
	insertImage(t, pool, "tenant-b", "img-3")

	err := pool.InTx(ctx, func(tx store.Tx) error {
		prints, err := tx.ListImageFingerprints(ctx, "tenant-a")
		if err != nil {
			return err
		}
		if len(prints) != 2 {
			t.Fatalf("expected 2 fingerprints, got %d", len(prints))
		}
		if prints[0].ImageID != "img-1" || prints[1].ImageID != "img-2" {
			t.Errorf("fingerprints out of id order: %v", prints)
		}
		if prints[0].PHash != "deadbeefcafef00d" || prints[0].DHash != "f00dcafedeadbeef" {
			t.Errorf("unexpected hashes: %+v", prints[0])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestFaceRoundTrip(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	insertFace(t, pool, "tenant-a", "face-1", "img-1", "cluster-1", embedding128(0.5))

	err := pool.InTx(ctx, func(tx store.Tx) error {
		face, err := tx.GetFace(ctx, "tenant-a", "face-1")
		if err != nil {
			return err
		}
		if face.ClusterID != "cluster-1" {
			t.Errorf("cluster = %q", face.ClusterID)
		}
		if face.BBox.W != 3 || face.BBox.H != 4 {
			t.Errorf("bbox = %+v", face.BBox)
		}
		if len(face.Embedding) != 128 {
			t.Errorf("embedding length = %d, want 128", len(face.Embedding))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestNearestFace(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	near := embedding128(0)
	far := make([]float32, 128)
	far[0] = 1 // nearly orthogonal to the ramp

	insertFace(t, pool, "tenant-a", "face-near", "img-1", "cluster-near", near)
	insertFace(t, pool, "tenant-a", "face-far", "img-1", "cluster-far", far)
	insertFace(t, pool, "tenant-b", "face-other", "img-9", "cluster-other", near)

	err := pool.InTx(ctx, func(tx store.Tx) error {
		got, err := tx.NearestFace(ctx, "tenant-a", near)
		if err != nil {
			return err
		}
		if got == nil {
			t.Fatal("expected a nearest face")
		}
		if got.FaceID != "face-near" {
			t.Errorf("nearest face = %q, want face-near", got.FaceID)
		}
		if got.Distance > 0.0001 {
			t.Errorf("distance to identical embedding = %f", got.Distance)
		}

		// Empty tenant yields no row, not an error.
		none, err := tx.NearestFace(ctx, "tenant-empty", near)
		if err != nil {
			return err
		}
		if none != nil {
			t.Errorf("expected nil for an empty tenant, got %+v", none)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestRollbackOnError(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	boom := errors.New("boom")

	err := pool.InTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertImage(ctx, store.Image{TenantID: "tenant-a", ID: "img-rollback"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the injected error, got %v", err)
	}

	err = pool.InTx(ctx, func(tx store.Tx) error {
		_, err := tx.GetImage(ctx, "tenant-a", "img-rollback")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected the insert to be rolled back, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestReviewEntries(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	var first, second int64

	err := pool.InTx(ctx, func(tx store.Tx) error {
		var err error
		if first, err = tx.InsertReviewEntry(ctx, "tenant-a", "cluster-1"); err != nil {
			return err
		}
		second, err = tx.InsertReviewEntry(ctx, "tenant-a", "cluster-2")
		return err
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if second <= first {
		t.Errorf("review ids must be monotonic, got %d then %d", first, second)
	}

	err = pool.InTx(ctx, func(tx store.Tx) error {
		entries, err := tx.ListReviewEntries(ctx, "tenant-a", 0, 10)
		if err != nil {
			return err
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].ID != first || entries[1].ID != second {
			t.Errorf("entries out of creation order: %v", entries)
		}

		n, err := tx.DeleteReviewEntry(ctx, "tenant-a", first)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("delete affected %d rows, want 1", n)
		}

		_, err = tx.GetReviewEntry(ctx, "tenant-a", first)
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestCascadingDeletes(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	insertImage(t, pool, "tenant-a", "img-1")
	insertImage(t, pool, "tenant-a", "img-2")
	insertFace(t, pool, "tenant-a", "face-1", "img-1", "cluster-1", embedding128(0))
	insertFace(t, pool, "tenant-a", "face-2", "img-2", "cluster-1", embedding128(0.1))
	insertFace(t, pool, "tenant-a", "face-3", "img-2", "cluster-2", embedding128(0.9))

	err := pool.InTx(ctx, func(tx store.Tx) error {
		imageIDs, err := tx.ClusterImageIDs(ctx, "tenant-a", "cluster-1")
		if err != nil {
			return err
		}
		if len(imageIDs) != 2 {
			t.Fatalf("cluster-1 spans %d images, want 2", len(imageIDs))
		}

		n, err := tx.DeleteFacesByCluster(ctx, "tenant-a", "cluster-1")
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("deleted %d faces, want 2", n)
		}

		if _, err := tx.DeleteImagesByIDs(ctx, "tenant-a", imageIDs); err != nil {
			return err
		}

		// face-3 belongs to cluster-2 and must survive.
		face, err := tx.GetFace(ctx, "tenant-a", "face-3")
		if err != nil {
			return err
		}
		if face.ClusterID != "cluster-2" {
			t.Errorf("unexpected survivor: %+v", face)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestTenantTeardown(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	insertImage(t, pool, "tenant-a", "img-1")
	insertFace(t, pool, "tenant-a", "face-1", "img-1", "cluster-1", embedding128(0))
	insertImage(t, pool, "tenant-b", "img-9")

	err := pool.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.DeleteFacesByTenant(ctx, "tenant-a"); err != nil {
			return err
		}
		if _, err := tx.DeleteImagesByTenant(ctx, "tenant-a"); err != nil {
			return err
		}
		if _, err := tx.DeleteReviewsByTenant(ctx, "tenant-a"); err != nil {
			return err
		}

		_, err := tx.GetImage(ctx, "tenant-a", "img-1")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected tenant-a image to be gone, got %v", err)
		}
		if _, err := tx.GetImage(ctx, "tenant-b", "img-9"); err != nil {
			t.Errorf("tenant-b image must survive, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}
