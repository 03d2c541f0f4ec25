package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/gateway"
)

var errRemoteDown = errors.New("remote unavailable")

type fakeRemote struct {
	mu      sync.Mutex
	rows    []domain.CartRecord
	failing bool
}

func newFakeRemote() *fakeRemote { return &fakeRemote{} }

func (f *fakeRemote) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeRemote) Seed(rec domain.CartRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rec)
}

func (f *fakeRemote) Rows() []domain.CartRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CartRecord(nil), f.rows...)
}

func (f *fakeRemote) FetchAll(_ context.Context, userID string) ([]domain.CartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errRemoteDown
	}
	var out []domain.CartRecord
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) Insert(_ context.Context, rec domain.CartRecord) (*domain.CartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errRemoteDown
	}
	for _, r := range f.rows {
		if r.UserID == rec.UserID && r.Item().Key() == rec.Item().Key() {
			return nil, gateway.ErrDuplicateItem
		}
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	f.rows = append(f.rows, rec)
	out := rec
	return &out, nil
}

func (f *fakeRemote) Update(_ context.Context, itemID string, quantity int) (*domain.CartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errRemoteDown
	}
	for i := range f.rows {
		if f.rows[i].ID == itemID {
			f.rows[i].Quantity = quantity
			f.rows[i].UpdatedAt = time.Now()
			out := f.rows[i]
			return &out, nil
		}
	}
	return nil, gateway.ErrItemNotFound
}

func (f *fakeRemote) Remove(_ context.Context, itemID string) (*domain.CartRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errRemoteDown
	}
	for i := range f.rows {
		if f.rows[i].ID == itemID {
			out := f.rows[i]
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return &out, nil
		}
	}
	return nil, gateway.ErrItemNotFound
}

func (f *fakeRemote) RemoveAll(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errRemoteDown
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeRemote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errRemoteDown
	}
	return nil
}

type fakeFeed struct {
	mu        sync.Mutex
	fn        func(domain.FeedEvent)
	userID    string
	cancelled bool
}

func newFakeFeed() *fakeFeed { return &fakeFeed{} }

func (f *fakeFeed) Subscribe(_ context.Context, userID string, fn func(domain.FeedEvent)) (func(), error) {
	f.mu.Lock()
	f.fn = fn
	f.userID = userID
	f.cancelled = false
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.fn = nil
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) Emit(ev domain.FeedEvent) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (f *fakeFeed) Cancelled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelled
}
