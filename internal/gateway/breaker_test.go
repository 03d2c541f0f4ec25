package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

type flakyRemote struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *flakyRemote) do() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *flakyRemote) FetchAll(context.Context, string) ([]domain.CartRecord, error) {
	return nil, f.do()
}

func (f *flakyRemote) Insert(_ context.Context, rec domain.CartRecord) (*domain.CartRecord, error) {
	if err := f.do(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (f *flakyRemote) Update(context.Context, string, int) (*domain.CartRecord, error) {
	if err := f.do(); err != nil {
		return nil, err
	}
	return &domain.CartRecord{}, nil
}

func (f *flakyRemote) Remove(context.Context, string) (*domain.CartRecord, error) {
	if err := f.do(); err != nil {
		return nil, err
	}
	return &domain.CartRecord{}, nil
}

func (f *flakyRemote) RemoveAll(context.Context, string) error { return f.do() }
func (f *flakyRemote) Ping(context.Context) error              { return f.do() }

func (f *flakyRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	remote := &flakyRemote{err: errors.New("connection refused")}
	b := NewBreaker(remote)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.FetchAll(ctx, "user-1")
		require.Error(t, err)
	}

	before := remote.callCount()
	_, err := b.FetchAll(ctx, "user-1")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, before, remote.callCount(), "open breaker does not hit the remote")
}

func TestBreakerTreatsNotFoundAsHealthy(t *testing.T) {
	remote := &flakyRemote{err: ErrItemNotFound}
	b := NewBreaker(remote)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := b.Remove(ctx, "it-1")
		assert.True(t, errors.Is(err, ErrItemNotFound), "breaker stays closed on not-found")
	}
}

func TestBreakerPingBypasses(t *testing.T) {
	remote := &flakyRemote{err: errors.New("down")}
	b := NewBreaker(remote)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = b.FetchAll(ctx, "user-1")
	}

	before := remote.callCount()
	_ = b.Ping(ctx)
	assert.Equal(t, before+1, remote.callCount(), "ping reaches the remote while the breaker is open")
}
