package domain

import (
	"fmt"
	"strings"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query text length.
	MaxQueryLength = 4096
	// DefaultTopK is the result count when the caller does not set one.
	DefaultTopK = 5
	// MaxTopK caps the result count.
	MaxTopK = 100
	// DefaultThreshold is the similarity cutoff when the caller does not set one.
	DefaultThreshold = 0.5
)

// Query is a validated, ephemeral search request. Never persisted.
type Query struct {
	text      string
	topK      int
	threshold float64
}

// NewQuery validates and normalizes search parameters.
// Defaults: topK=5, threshold=0.5. Cosine similarity over real vectors is
// bounded to [-1, 1], so thresholds outside that range are rejected.
func NewQuery(text string, topK int, threshold *float64) (Query, error) {
	if strings.TrimSpace(text) == "" {
		return Query{}, fmt.Errorf("%w: query text is required", ErrEmptyQuery)
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", ErrInvalidQuery, MaxQueryLength)
	}
	if topK < 0 {
		return Query{}, fmt.Errorf("%w: top_k must be positive", ErrInvalidQuery)
	}
	if topK == 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	t := DefaultThreshold
	if threshold != nil {
		t = *threshold
	}
	if t < -1 || t > 1 {
		return Query{}, fmt.Errorf("%w: threshold must be between -1 and 1", ErrInvalidQuery)
	}
	return Query{text: text, topK: topK, threshold: t}, nil
}

// Text returns the free-text query.
func (q *Query) Text() string { return q.text }

// TopK returns the maximum number of results.
func (q *Query) TopK() int { return q.topK }

// Threshold returns the inclusive similarity cutoff.
func (q *Query) Threshold() float64 { return q.threshold }
