package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/newsdex/newsdex/internal/domain"
)

// UserByID fetches a user by external identifier.
func (s *Store) UserByID(ctx context.Context, userID string) (domain.User, error) {
	var (
		id    string
		count int64
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, request_count FROM users WHERE user_id = ?
	`, userID)
	if err := row.Scan(&id, &count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("fetching user %q: %w", userID, err)
	}
	return domain.ReconstructUser(id, count), nil
}

// IncrementRequestCount bumps the lifetime tally for a user, creating the
// row on first sight.
func (s *Store) IncrementRequestCount(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, request_count) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET request_count = request_count + 1
	`, userID)
	if err != nil {
		return fmt.Errorf("incrementing request count for %q: %w", userID, err)
	}
	return nil
}
