package domain

import "context"

// Encoder is the shared text vectorization contract between layers.
// Implementations must be safe for concurrent use; the underlying model is
// loaded once and read-only afterwards.
type Encoder interface {
	Encode(ctx context.Context, text string) (EncodingResult, error)
}

// HealthChecker verifies encoder provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EncodingResult carries the query vector and token usage through the
// decorator chain. Tokens are zero on cache hits.
type EncodingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Embedding pairs a stored vector with its owning document. The similarity
// score of a query is never part of this record; it lives only on
// RankedResult.
type Embedding struct {
	documentID int64
	vector     []float32
}

// NewEmbedding builds an embedding for storage.
func NewEmbedding(documentID int64, vector []float32) Embedding {
	return Embedding{documentID: documentID, vector: vector}
}

// DocumentID returns the owning document reference.
func (e *Embedding) DocumentID() int64 { return e.documentID }

// Vector returns the stored vector.
func (e *Embedding) Vector() []float32 { return e.vector }
