package ingest

import (
	"context"

	"github.com/newsdex/newsdex/internal/domain"
)

// DocumentWriter is the document storage contract.
type DocumentWriter interface {
	InsertDocument(ctx context.Context, doc *domain.Document) (int64, error)
	DocumentExistsByURL(ctx context.Context, url string) (bool, error)
}

// EmbeddingWriter persists document vectors.
type EmbeddingWriter interface {
	InsertEmbedding(ctx context.Context, emb domain.Embedding) error
}
