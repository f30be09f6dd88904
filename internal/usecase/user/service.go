// Package user exposes per-caller bookkeeping reads.
package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/newsdex/newsdex/internal/domain"
)

// Service answers lookups against the user store.
type Service struct {
	reader Reader
	logger *zap.Logger
}

// New creates a user service.
func New(reader Reader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{reader: reader, logger: logger}
}

// Get returns the user's record.
func (s *Service) Get(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidQuery)
	}
	u, err := s.reader.UserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %q: %w", userID, err)
	}
	return u, nil
}
