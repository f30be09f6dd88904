// Package rank implements the similarity search core: brute-force exact
// cosine ranking over a corpus snapshot, behind a strategy interface so an
// index-backed implementation can be substituted without touching callers.
package rank

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Entry is one corpus item: a document reference and its stored vector.
type Entry struct {
	DocumentID int64
	Vector     []float32
}

// Scored is one ranked hit.
type Scored struct {
	DocumentID int64
	Score      float64
}

// Ranker selects the top-K corpus entries whose similarity to the query
// vector meets the threshold (inclusive), ordered by descending score.
// Ties preserve corpus order, so repeated calls over an unchanged corpus
// are reproducible. An empty result is a valid outcome, not an error.
type Ranker interface {
	Rank(ctx context.Context, query []float32, corpus []Entry, topK int, threshold float64) []Scored
}

// BruteForce scans the full corpus and scores every entry. O(N·D) scoring
// plus O(N log N) sort; acceptable while the corpus is small.
type BruteForce struct {
	logger *zap.Logger
}

// NewBruteForce creates a brute-force ranker.
func NewBruteForce(logger *zap.Logger) *BruteForce {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BruteForce{logger: logger}
}

var _ Ranker = (*BruteForce)(nil)

// Rank implements Ranker. Entries whose dimension differs from the query
// are skipped and logged as a data-integrity signal; one malformed row
// never aborts the pass. Zero-magnitude vectors score 0.
func (b *BruteForce) Rank(
	ctx context.Context, query []float32, corpus []Entry, topK int, threshold float64,
) []Scored {
	scored := make([]Scored, 0, len(corpus))
	for _, e := range corpus {
		select {
		case <-ctx.Done():
			return scored[:0]
		default:
		}

		if len(e.Vector) != len(query) {
			b.logger.Warn("skipping embedding with mismatched dimension",
				zap.Int64("document_id", e.DocumentID),
				zap.Int("stored_dim", len(e.Vector)),
				zap.Int("query_dim", len(query)),
			)
			continue
		}

		s := cosineSimilarity(query, e.Vector)
		if s >= threshold {
			scored = append(scored, Scored{DocumentID: e.DocumentID, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
