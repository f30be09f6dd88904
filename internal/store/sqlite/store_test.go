package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/newsdex/newsdex/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "newsdex.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDocument(t *testing.T, title, content, url string) domain.Document {
	t.Helper()
	doc, err := domain.NewDocument(title, content, url)
	if err != nil {
		t.Fatalf("building document: %v", err)
	}
	return doc
}

func TestInsertDocument_URLDedup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := mustDocument(t, "Title", "Body", "https://example.com/a")
	id, err := s.InsertDocument(ctx, &doc)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected assigned id")
	}

	dup := mustDocument(t, "Other", "Body", "https://example.com/a")
	if _, err := s.InsertDocument(ctx, &dup); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	exists, err := s.DocumentExistsByURL(ctx, "https://example.com/a")
	if err != nil || !exists {
		t.Fatalf("expected url to exist, got exists=%v err=%v", exists, err)
	}
}

func TestDocumentByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.DocumentByID(context.Background(), 42); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentsByIDs_Hydration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docA := mustDocument(t, "A", "alpha", "https://example.com/a")
	docB := mustDocument(t, "B", "beta", "https://example.com/b")
	idA, _ := s.InsertDocument(ctx, &docA)
	idB, _ := s.InsertDocument(ctx, &docB)

	docs, err := s.DocumentsByIDs(ctx, []int64{idA, idB, 999})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	gotA, gotB := docs[idA], docs[idB]
	if gotA.Title() != "A" || gotB.URL() != "https://example.com/b" {
		t.Fatalf("unexpected hydration: %+v", docs)
	}
}

func TestEmbeddings_RoundTripAndSnapshotOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docA := mustDocument(t, "A", "alpha", "https://example.com/a")
	docB := mustDocument(t, "B", "beta", "https://example.com/b")
	idA, _ := s.InsertDocument(ctx, &docA)
	idB, _ := s.InsertDocument(ctx, &docB)

	if err := s.InsertEmbedding(ctx, domain.NewEmbedding(idA, []float32{0.25, -1, 3})); err != nil {
		t.Fatalf("insert embedding: %v", err)
	}
	if err := s.InsertEmbedding(ctx, domain.NewEmbedding(idB, []float32{1, 0, 0})); err != nil {
		t.Fatalf("insert embedding: %v", err)
	}

	entries, err := s.FetchAllEmbeddings(ctx)
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Snapshot preserves insertion order (tie-break determinism depends on it).
	if entries[0].DocumentID != idA || entries[1].DocumentID != idB {
		t.Fatalf("snapshot order broken: %+v", entries)
	}
	want := []float32{0.25, -1, 3}
	for i, f := range entries[0].Vector {
		if f != want[i] {
			t.Fatalf("vector round trip mismatch at %d: %f != %f", i, f, want[i])
		}
	}
}

func TestUsers_IncrementAndFetch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.UserByID(ctx, "u1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementRequestCount(ctx, "u1"); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	u, err := s.UserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if u.RequestCount() != 3 {
		t.Fatalf("expected count 3, got %d", u.RequestCount())
	}
}

func TestInsertRequestLog(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertRequestLog(context.Background(), RequestLog{
		UserID:     "u1",
		Endpoint:   "/search",
		StatusCode: 200,
		DurationMS: 12.5,
	})
	if err != nil {
		t.Fatalf("insert log: %v", err)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsdex.db")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if err := s2.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
