package sqlite

import (
	"context"
	"fmt"
	"time"
)

// RequestLog is one persisted request record.
type RequestLog struct {
	UserID     string
	Endpoint   string
	StatusCode int
	DurationMS float64
	CreatedAt  time.Time
}

// InsertRequestLog persists one request log row.
func (s *Store) InsertRequestLog(ctx context.Context, l RequestLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_logs (user_id, endpoint, status_code, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.UserID, l.Endpoint, l.StatusCode, l.DurationMS, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting request log: %w", err)
	}
	return nil
}
