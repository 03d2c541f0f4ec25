package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

func TestSQLiteStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	st, err := NewSQLiteStorage(path, "default")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	_, err = st.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	now := time.Now().UTC().Truncate(time.Second)
	snap := &Snapshot{
		Items: []domain.LineItem{{
			ID:       "it-1",
			Product:  domain.ProductSnapshot{ProductID: 1, Name: "anklet", Price: decimal.NewFromInt(22)},
			Quantity: 2,
			Color:    "green",
		}},
		LastSync: &now,
	}
	require.NoError(t, st.Save(ctx, snap))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "it-1", loaded.Items[0].ID)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	require.NotNil(t, loaded.LastSync)
	assert.True(t, now.Equal(*loaded.LastSync))

	// second save overwrites, last writer wins
	snap.Items[0].Quantity = 9
	require.NoError(t, st.Save(ctx, snap))
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Items[0].Quantity)
}

func TestSQLiteStorageProfilesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	a, err := NewSQLiteStorage(path, "profile-a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLiteStorage(path, "profile-b")
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	require.NoError(t, a.Save(ctx, &Snapshot{}))

	_, err = b.Load(ctx)
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}
