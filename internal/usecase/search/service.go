// Package search orchestrates one query: encode, snapshot the corpus, rank,
// hydrate. The service owns no persistent state; it is a pure function of
// (query, corpus snapshot, parameters) plus an optional result cache.
package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/db"
	"github.com/newsdex/newsdex/internal/domain"
	"github.com/newsdex/newsdex/internal/metrics"
	"github.com/newsdex/newsdex/internal/rank"
)

const cacheKeyPrefix = "newsdex:search_cache:"

// DefaultCacheTTL bounds how long a ranked-result list may be served
// without re-ranking.
const DefaultCacheTTL = time.Hour

// Service handles document search over the stored corpus.
type Service struct {
	encoder  domain.Encoder
	corpus   CorpusReader
	docs     DocumentReader
	ranker   rank.Ranker
	cache    ResultCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// New creates a search service. cache may be nil.
func New(
	encoder domain.Encoder,
	corpus CorpusReader,
	docs DocumentReader,
	ranker rank.Ranker,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		encoder:  encoder,
		corpus:   corpus,
		docs:     docs,
		ranker:   ranker,
		cacheTTL: DefaultCacheTTL,
		logger:   logger,
	}
}

// WithCache attaches a result cache.
func (s *Service) WithCache(cache ResultCache, ttl time.Duration) *Service {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// Search executes one query. scope isolates cache entries between callers
// (typically the user id). Zero results is a valid outcome: an empty slice
// and nil error, never an error.
func (s *Service) Search(ctx context.Context, q domain.Query, scope string) ([]domain.RankedResult, error) {
	key := cacheKey(q, scope)

	if cached, ok := s.fromCache(ctx, key); ok {
		metrics.SearchResultCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if s.cache != nil {
		metrics.SearchResultCacheTotal.WithLabelValues("miss").Inc()
	}

	enc, err := s.encoder.Encode(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	entries, err := s.corpus.FetchAllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w: %w", domain.ErrStoreUnavailable, err)
	}

	scored := s.ranker.Rank(ctx, enc.Vector, entries, q.TopK(), q.Threshold())
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search canceled: %w", err)
	}

	results, err := s.hydrate(ctx, scored)
	if err != nil {
		return nil, err
	}

	metrics.SearchResultsReturned.Observe(float64(len(results)))
	s.toCache(ctx, key, results)

	return results, nil
}

// hydrate resolves document references into display fields. A reference
// whose document row disappeared is dropped and logged, not fatal.
func (s *Service) hydrate(ctx context.Context, scored []rank.Scored) ([]domain.RankedResult, error) {
	if len(scored) == 0 {
		return []domain.RankedResult{}, nil
	}

	ids := make([]int64, len(scored))
	for i, sc := range scored {
		ids[i] = sc.DocumentID
	}

	docs, err := s.docs.DocumentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate documents: %w: %w", domain.ErrStoreUnavailable, err)
	}

	results := make([]domain.RankedResult, 0, len(scored))
	for _, sc := range scored {
		doc, ok := docs[sc.DocumentID]
		if !ok {
			s.logger.Warn("ranked document missing from store",
				zap.Int64("document_id", sc.DocumentID))
			continue
		}
		results = append(results, domain.NewRankedResult(
			doc.ID(), doc.Title(), doc.Content(), doc.URL(), sc.Score,
		))
	}
	return results, nil
}

// cachedResult is the serialized form of one hit. All RankedResult fields
// survive a cache round trip.
type cachedResult struct {
	DocumentID int64   `json:"document_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	URL        string  `json:"url"`
	Score      float64 `json:"similarity_score"`
}

func (s *Service) fromCache(ctx context.Context, key string) ([]domain.RankedResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var items []cachedResult
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	results := make([]domain.RankedResult, len(items))
	for i, it := range items {
		results[i] = domain.NewRankedResult(it.DocumentID, it.Title, it.Content, it.URL, it.Score)
	}
	return results, true
}

func (s *Service) toCache(ctx context.Context, key string, results []domain.RankedResult) {
	if s.cache == nil {
		return
	}

	items := make([]cachedResult, len(results))
	for i := range results {
		r := &results[i]
		items[i] = cachedResult{
			DocumentID: r.DocumentID(),
			Title:      r.Title(),
			Content:    r.Content(),
			URL:        r.URL(),
			Score:      r.Score(),
		}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("Failed to serialize results for cache", zap.Error(err))
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey normalizes (query text, top_k, threshold, scope) into a stable key.
func cacheKey(q domain.Query, scope string) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%g|%s", q.Text(), q.TopK(), q.Threshold(), scope))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
