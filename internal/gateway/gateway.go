package gateway

import (
	"context"
	"errors"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

// RemoteCart is the thin CRUD surface over the remote per-user cart table.
// Implementations perform no retries and no interpretation; failure recovery
// belongs to the sync coordinator.
type RemoteCart interface {
	FetchAll(ctx context.Context, userID string) ([]domain.CartRecord, error)
	Insert(ctx context.Context, rec domain.CartRecord) (*domain.CartRecord, error)
	Update(ctx context.Context, itemID string, quantity int) (*domain.CartRecord, error)
	Remove(ctx context.Context, itemID string) (*domain.CartRecord, error)
	RemoveAll(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

var (
	// ErrItemNotFound: the target row no longer exists. The coordinator
	// treats this as already-resolved when replaying queued changes.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrDuplicateItem: the (user, product, customization) tuple already
	// has a row, written by another session.
	ErrDuplicateItem = errors.New("cart item already exists")
)
