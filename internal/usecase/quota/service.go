// Package quota is admission control: a fixed-window per-user request
// counter checked before a query reaches the search core. The window is
// explicit and configurable; the counter always resets when it elapses.
package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
	"github.com/newsdex/newsdex/internal/metrics"
)

const counterKeyPrefix = "newsdex:quota:"

// Defaults for admission control.
const (
	DefaultLimit  = 5
	DefaultWindow = time.Hour
)

// Service counts requests per user and rejects callers over the limit.
type Service struct {
	counter Counter
	tally   Tally
	limit   int64
	window  time.Duration
	logger  *zap.Logger
}

// New creates a quota service. tally may be nil (no lifetime bookkeeping).
// Non-positive limit or window fall back to the defaults.
func New(counter Counter, tally Tally, limit int64, window time.Duration, logger *zap.Logger) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{counter: counter, tally: tally, limit: limit, window: window, logger: logger}
}

// Allow records one request for the user and reports whether it may
// proceed. Counter-store failures log and admit: admission control guards
// capacity, it must not take search down with it.
func (s *Service) Allow(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidQuery)
	}

	s.recordTally(ctx, userID)

	key := counterKeyPrefix + userID
	n, err := s.counter.IncrBy(ctx, key, 1)
	if err != nil {
		s.logger.Warn("quota counter unavailable, admitting request",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}

	// NX: the window starts at the first request and is never extended by
	// later ones.
	if err := s.counter.Expire(ctx, key, s.window, true); err != nil {
		s.logger.Warn("failed to set quota window",
			zap.String("user_id", userID), zap.Error(err))
	}

	if n > s.limit {
		metrics.QuotaRejectionsTotal.Inc()
		return fmt.Errorf("user %q: %w", userID, domain.ErrQuotaExceeded)
	}
	return nil
}

func (s *Service) recordTally(ctx context.Context, userID string) {
	if s.tally == nil {
		return
	}
	if err := s.tally.IncrementRequestCount(ctx, userID); err != nil {
		s.logger.Warn("failed to persist request tally",
			zap.String("user_id", userID), zap.Error(err))
	}
}
