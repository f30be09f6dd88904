// Package ingest owns the write path: validate, deduplicate by URL,
// persist the document, encode its content and persist the vector.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
)

// Service adds documents to the corpus.
type Service struct {
	encoder    domain.Encoder
	docs       DocumentWriter
	embeddings EmbeddingWriter
	logger     *zap.Logger
}

// New creates an ingestion service.
func New(encoder domain.Encoder, docs DocumentWriter, embeddings EmbeddingWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{encoder: encoder, docs: docs, embeddings: embeddings, logger: logger}
}

// Ingest stores one document and its embedding. Documents are keyed by
// URL; a URL already in the corpus is skipped and reported as created ==
// false with a nil error.
func (s *Service) Ingest(ctx context.Context, title, content, url string) (bool, error) {
	doc, err := domain.NewDocument(title, content, url)
	if err != nil {
		return false, err
	}

	exists, err := s.docs.DocumentExistsByURL(ctx, url)
	if err != nil {
		return false, fmt.Errorf("check document url: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if exists {
		s.logger.Debug("document already ingested", zap.String("url", url))
		return false, nil
	}

	id, err := s.docs.InsertDocument(ctx, &doc)
	if err != nil {
		// A concurrent ingest of the same URL can win the race between
		// the existence check and the insert.
		if errors.Is(err, domain.ErrAlreadyExists) {
			s.logger.Debug("document already ingested", zap.String("url", url))
			return false, nil
		}
		return false, fmt.Errorf("insert document: %w: %w", domain.ErrStoreUnavailable, err)
	}

	res, err := s.encoder.Encode(ctx, doc.Content())
	if err != nil {
		return false, fmt.Errorf("encode document %d: %w", id, err)
	}

	emb := domain.NewEmbedding(id, res.Vector)
	if err := s.embeddings.InsertEmbedding(ctx, emb); err != nil {
		return false, fmt.Errorf("insert embedding for document %d: %w: %w", id, domain.ErrStoreUnavailable, err)
	}

	s.logger.Info("document ingested",
		zap.Int64("document_id", id),
		zap.String("url", url),
		zap.Int("dimensions", len(res.Vector)))
	return true, nil
}
