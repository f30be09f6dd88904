package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newsdex/newsdex/internal/domain"
)

// InsertDocument persists a new document and returns its assigned id.
// A duplicate source URL yields domain.ErrAlreadyExists.
func (s *Store) InsertDocument(ctx context.Context, doc *domain.Document) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (title, content, url, created_at)
		VALUES (?, ?, ?, ?)
	`, doc.Title(), doc.Content(), doc.URL(), doc.CreatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("document url %q: %w", doc.URL(), domain.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("inserting document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading document id: %w", err)
	}
	return id, nil
}

// DocumentByID fetches one document.
func (s *Store) DocumentByID(ctx context.Context, id int64) (domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, url, created_at FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("fetching document %d: %w", id, err)
	}
	return doc, nil
}

// DocumentsByIDs fetches a batch of documents keyed by id. Missing ids are
// simply absent from the map; the caller decides whether that matters.
func (s *Store) DocumentsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Document, error) {
	if len(ids) == 0 {
		return map[int64]domain.Document{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, url, created_at FROM documents WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching documents: %w", err)
	}
	defer rows.Close()

	docs := make(map[int64]domain.Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs[doc.ID()] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DocumentExistsByURL reports whether a document with the given source URL
// is already ingested.
func (s *Store) DocumentExistsByURL(ctx context.Context, url string) (bool, error) {
	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM documents WHERE url = ?", url)
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("checking url: %w", err)
	}
	return n > 0, nil
}

// CountDocuments returns the corpus size.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM documents")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var (
		id             int64
		title, content string
		url            string
		createdAt      time.Time
	)
	if err := row.Scan(&id, &title, &content, &url, &createdAt); err != nil {
		return domain.Document{}, err
	}
	return domain.ReconstructDocument(id, title, content, url, createdAt), nil
}

// isUniqueViolation detects SQLite unique-constraint failures without
// depending on driver error codes.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
