package search

import (
	"context"
	"time"

	"github.com/newsdex/newsdex/internal/domain"
	"github.com/newsdex/newsdex/internal/rank"
)

// CorpusReader provides the point-in-time corpus snapshot for one ranking
// pass. No pagination, transactions, or write access required.
type CorpusReader interface {
	FetchAllEmbeddings(ctx context.Context) ([]rank.Entry, error)
}

// DocumentReader hydrates ranked document references into display fields.
type DocumentReader interface {
	DocumentsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Document, error)
}

// ResultCache memoizes serialized ranked-result lists. A nil cache disables
// memoization.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
