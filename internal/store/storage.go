package store

import (
	"context"
	"errors"
	"time"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

// Snapshot is the JSON payload persisted under the store's namespaced key.
type Snapshot struct {
	Items    []domain.LineItem `json:"items"`
	LastSync *time.Time        `json:"last_sync"`
}

// Storage persists the cart snapshot for the current device profile. The
// store is the only writer of the backing key.
type Storage interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

var ErrNoSnapshot = errors.New("no cart snapshot")

// MemoryStorage keeps the snapshot in memory. Used in tests and as a
// fallback when no durable backend is configured.
type MemoryStorage struct {
	snap *Snapshot
	// FailSaves makes every Save return an error, for exercising the
	// storage-failure path.
	FailSaves bool
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Load(context.Context) (*Snapshot, error) {
	if m.snap == nil {
		return nil, ErrNoSnapshot
	}
	return m.snap, nil
}

func (m *MemoryStorage) Save(_ context.Context, snap *Snapshot) error {
	if m.FailSaves {
		return errors.New("storage unavailable")
	}
	m.snap = snap
	return nil
}
