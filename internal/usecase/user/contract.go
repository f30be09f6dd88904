package user

import (
	"context"

	"github.com/newsdex/newsdex/internal/domain"
)

// Reader is the user storage contract.
type Reader interface {
	UserByID(ctx context.Context, userID string) (domain.User, error)
}
