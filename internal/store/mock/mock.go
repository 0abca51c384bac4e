// Package mock provides an in-memory implementation of the store
// interfaces for testing. Units of work are real: the state is
// snapshotted when a transaction begins and restored when it fails, so
// rollback behavior can be asserted without a database.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/faceforge/faceforge/internal/fingerprint"
	"github.com/faceforge/faceforge/internal/store"
)

// Store is an in-memory tenant-scoped store.
type Store struct {
	mu           sync.Mutex
	images       map[string]map[string]store.Image // tenant -> image id -> image
	faces        map[string]map[string]store.Face  // tenant -> face id -> face
	reviews      map[int64]store.ReviewEntry
	nextReviewID int64

	// Error injection
	BeginError       error
	CommitError      error
	InsertImageError error
	InsertFaceError  error
	InsertReviewErr  error
	NearestFaceError error
}

// New creates an empty mock store.
func New() *Store {
	return &Store{
		images:  make(map[string]map[string]store.Image),
		faces:   make(map[string]map[string]store.Face),
		reviews: make(map[int64]store.ReviewEntry),
	}
}

// InTx runs fn against the store under a single lock. State is restored
// from a snapshot when fn returns an error, mirroring a rollback.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if s.BeginError != nil {
		return s.BeginError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	if err := fn(&Tx{store: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	if s.CommitError != nil {
		s.restore(snapshot)
		return s.CommitError
	}
	return nil
}

var _ store.Store = (*Store)(nil)

type state struct {
	images       map[string]map[string]store.Image
	faces        map[string]map[string]store.Face
	reviews      map[int64]store.ReviewEntry
	nextReviewID int64
}

func (s *Store) clone() state {
	images := make(map[string]map[string]store.Image, len(s.images))
	for tenant, rows := range s.images {
		inner := make(map[string]store.Image, len(rows))
		for id, row := range rows {
			inner[id] = row
		}
		images[tenant] = inner
	}
	faces := make(map[string]map[string]store.Face, len(s.faces))
	for tenant, rows := range s.faces {
		inner := make(map[string]store.Face, len(rows))
		for id, row := range rows {
			inner[id] = row
		}
		faces[tenant] = inner
	}
	reviews := make(map[int64]store.ReviewEntry, len(s.reviews))
	for id, row := range s.reviews {
		reviews[id] = row
	}
	return state{images: images, faces: faces, reviews: reviews, nextReviewID: s.nextReviewID}
}

func (s *Store) restore(snap state) {
	s.images = snap.images
	s.faces = snap.faces
	s.reviews = snap.reviews
	s.nextReviewID = snap.nextReviewID
}

// Images returns all images of a tenant, for assertions.
func (s *Store) Images(tenantID string) []store.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Image
	for _, img := range s.images[tenantID] {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Faces returns all faces of a tenant, for assertions.
func (s *Store) Faces(tenantID string) []store.Face {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Face
	for _, face := range s.faces[tenantID] {
		out = append(out, face)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reviews returns all pending review entries of a tenant, for assertions.
func (s *Store) Reviews(tenantID string) []store.ReviewEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewsLocked(tenantID)
}

func (s *Store) reviewsLocked(tenantID string) []store.ReviewEntry {
	var out []store.ReviewEntry
	for _, entry := range s.reviews {
		if entry.TenantID == tenantID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tx operates directly on the store's maps; InTx holds the lock for the
// whole unit of work.
type Tx struct {
	store *Store
}

var _ store.Tx = (*Tx)(nil)

func (t *Tx) InsertImage(ctx context.Context, img store.Image) error {
	if t.store.InsertImageError != nil {
		return t.store.InsertImageError
	}
	rows, ok := t.store.images[img.TenantID]
	if !ok {
		rows = make(map[string]store.Image)
		t.store.images[img.TenantID] = rows
	}
	rows[img.ID] = img
	return nil
}

func (t *Tx) InsertFace(ctx context.Context, face store.Face) error {
	if t.store.InsertFaceError != nil {
		return t.store.InsertFaceError
	}
	rows, ok := t.store.faces[face.TenantID]
	if !ok {
		rows = make(map[string]store.Face)
		t.store.faces[face.TenantID] = rows
	}
	rows[face.ID] = face
	return nil
}

func (t *Tx) InsertReviewEntry(ctx context.Context, tenantID, clusterID string) (int64, error) {
	if t.store.InsertReviewErr != nil {
		return 0, t.store.InsertReviewErr
	}
	t.store.nextReviewID++
	id := t.store.nextReviewID
	t.store.reviews[id] = store.ReviewEntry{ID: id, TenantID: tenantID, ClusterID: clusterID}
	return id, nil
}

// NearestFace scans all faces of the tenant and returns the closest by
// cosine distance, ties broken by lowest face id.
func (t *Tx) NearestFace(ctx context.Context, tenantID string, embedding []float32) (*store.NearestFace, error) {
	if t.store.NearestFaceError != nil {
		return nil, t.store.NearestFaceError
	}

	var best *store.NearestFace
	ids := make([]string, 0, len(t.store.faces[tenantID]))
	for id := range t.store.faces[tenantID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		face := t.store.faces[tenantID][id]
		distance := fingerprint.CosineDistance(embedding, face.Embedding)
		if best == nil || distance < best.Distance {
			best = &store.NearestFace{FaceID: face.ID, ClusterID: face.ClusterID, Distance: distance}
		}
	}
	return best, nil
}

func (t *Tx) GetImage(ctx context.Context, tenantID, imageID string) (*store.ImageDetails, error) {
	img, ok := t.store.images[tenantID][imageID]
	if !ok {
		return nil, store.ErrNotFound
	}

	details := &store.ImageDetails{PHash: img.PHash}
	clusters := make(map[string]bool)
	for _, face := range t.facesByImage(tenantID, imageID) {
		details.FaceIDs = append(details.FaceIDs, face.ID)
		if !clusters[face.ClusterID] {
			clusters[face.ClusterID] = true
			details.ClusterIDs = append(details.ClusterIDs, face.ClusterID)
		}
	}
	return details, nil
}

func (t *Tx) ListImageFingerprints(ctx context.Context, tenantID string) ([]store.ImageFingerprint, error) {
	ids := make([]string, 0, len(t.store.images[tenantID]))
	for id := range t.store.images[tenantID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var prints []store.ImageFingerprint
	for _, id := range ids {
		img := t.store.images[tenantID][id]
		prints = append(prints, store.ImageFingerprint{ImageID: img.ID, PHash: img.PHash, DHash: img.DHash})
	}
	return prints, nil
}

func (t *Tx) GetFace(ctx context.Context, tenantID, faceID string) (*store.Face, error) {
	face, ok := t.store.faces[tenantID][faceID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &face, nil
}

func (t *Tx) ListFacesByImage(ctx context.Context, tenantID, imageID string, skip, limit int) ([]store.Face, error) {
	faces := t.facesByImage(tenantID, imageID)
	if skip >= len(faces) {
		return nil, nil
	}
	faces = faces[skip:]
	if limit < len(faces) {
		faces = faces[:limit]
	}
	return faces, nil
}

func (t *Tx) ClusterStats(ctx context.Context, tenantID, clusterID string) (*store.ClusterStats, error) {
	stats := &store.ClusterStats{}
	images := make(map[string]bool)
	for _, face := range t.store.faces[tenantID] {
		if face.ClusterID == clusterID {
			stats.FaceCount++
			images[face.ImageID] = true
		}
	}
	stats.ImageCount = len(images)
	return stats, nil
}

func (t *Tx) ClusterImageIDs(ctx context.Context, tenantID, clusterID string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, face := range t.store.faces[tenantID] {
		if face.ClusterID == clusterID && !seen[face.ImageID] {
			seen[face.ImageID] = true
			ids = append(ids, face.ImageID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (t *Tx) UpdateFaceCluster(ctx context.Context, tenantID, faceID, toClusterID string) (int64, error) {
	face, ok := t.store.faces[tenantID][faceID]
	if !ok {
		return 0, nil
	}
	face.ClusterID = toClusterID
	t.store.faces[tenantID][faceID] = face
	return 1, nil
}

func (t *Tx) DeleteImage(ctx context.Context, tenantID, imageID string) (int64, error) {
	if _, ok := t.store.images[tenantID][imageID]; !ok {
		return 0, nil
	}
	delete(t.store.images[tenantID], imageID)
	return 1, nil
}

func (t *Tx) DeleteFace(ctx context.Context, tenantID, faceID string) (int64, error) {
	if _, ok := t.store.faces[tenantID][faceID]; !ok {
		return 0, nil
	}
	delete(t.store.faces[tenantID], faceID)
	return 1, nil
}

func (t *Tx) DeleteFacesByImage(ctx context.Context, tenantID, imageID string) (int64, error) {
	var n int64
	for id, face := range t.store.faces[tenantID] {
		if face.ImageID == imageID {
			delete(t.store.faces[tenantID], id)
			n++
		}
	}
	return n, nil
}

func (t *Tx) DeleteFacesByCluster(ctx context.Context, tenantID, clusterID string) (int64, error) {
	var n int64
	for id, face := range t.store.faces[tenantID] {
		if face.ClusterID == clusterID {
			delete(t.store.faces[tenantID], id)
			n++
		}
	}
	return n, nil
}

func (t *Tx) DeleteImagesByIDs(ctx context.Context, tenantID string, imageIDs []string) (int64, error) {
	var n int64
	for _, id := range imageIDs {
		if _, ok := t.store.images[tenantID][id]; ok {
			delete(t.store.images[tenantID], id)
			n++
		}
	}
	return n, nil
}

func (t *Tx) DeleteFacesByTenant(ctx context.Context, tenantID string) (int64, error) {
	n := int64(len(t.store.faces[tenantID]))
	delete(t.store.faces, tenantID)
	return n, nil
}

func (t *Tx) DeleteImagesByTenant(ctx context.Context, tenantID string) (int64, error) {
	n := int64(len(t.store.images[tenantID]))
	delete(t.store.images, tenantID)
	return n, nil
}

func (t *Tx) DeleteReviewsByCluster(ctx context.Context, tenantID, clusterID string) (int64, error) {
	var n int64
	for id, entry := range t.store.reviews {
		if entry.TenantID == tenantID && entry.ClusterID == clusterID {
			delete(t.store.reviews, id)
			n++
		}
	}
	return n, nil
}

func (t *Tx) DeleteReviewsByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	for id, entry := range t.store.reviews {
		if entry.TenantID == tenantID {
			delete(t.store.reviews, id)
			n++
		}
	}
	return n, nil
}

func (t *Tx) GetReviewEntry(ctx context.Context, tenantID string, reviewID int64) (*store.ReviewEntry, error) {
	entry, ok := t.store.reviews[reviewID]
	if !ok || entry.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	return &entry, nil
}

func (t *Tx) ListReviewEntries(ctx context.Context, tenantID string, skip, limit int) ([]store.ReviewEntry, error) {
	entries := t.store.reviewsLocked(tenantID)
	if skip >= len(entries) {
		return nil, nil
	}
	entries = entries[skip:]
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (t *Tx) DeleteReviewEntry(ctx context.Context, tenantID string, reviewID int64) (int64, error) {
	entry, ok := t.store.reviews[reviewID]
	if !ok || entry.TenantID != tenantID {
		return 0, nil
	}
	delete(t.store.reviews, reviewID)
	return 1, nil
}

func (t *Tx) ListOrphanReviewEntries(ctx context.Context) ([]store.ReviewEntry, error) {
	var out []store.ReviewEntry
	for _, entry := range t.store.reviews {
		orphan := true
		for _, face := range t.store.faces[entry.TenantID] {
			if face.ClusterID == entry.ClusterID {
				orphan = false
				break
			}
		}
		if orphan {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// facesByImage returns the faces of one image in id order.
func (t *Tx) facesByImage(tenantID, imageID string) []store.Face {
	var out []store.Face
	for _, face := range t.store.faces[tenantID] {
		if face.ImageID == imageID {
			out = append(out, face)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
