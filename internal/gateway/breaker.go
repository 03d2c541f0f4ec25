package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

// Breaker wraps a RemoteCart so that a misbehaving remote fails fast instead
// of stalling every cart mutation. An open breaker surfaces as an ordinary
// remote error, which the coordinator handles by queueing the change.
type Breaker struct {
	next RemoteCart
	cb   *gobreaker.CircuitBreaker[any]
}

func NewBreaker(next RemoteCart) *Breaker {
	settings := gobreaker.Settings{
		Name:    "remote-cart",
		Timeout: 15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// constraint and not-found responses prove the remote is healthy
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrDuplicateItem)
		},
	}
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *Breaker) FetchAll(ctx context.Context, userID string) ([]domain.CartRecord, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.FetchAll(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	recs, _ := v.([]domain.CartRecord)
	return recs, nil
}

func (b *Breaker) Insert(ctx context.Context, rec domain.CartRecord) (*domain.CartRecord, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Insert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartRecord), nil
}

func (b *Breaker) Update(ctx context.Context, itemID string, quantity int) (*domain.CartRecord, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Update(ctx, itemID, quantity)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartRecord), nil
}

func (b *Breaker) Remove(ctx context.Context, itemID string) (*domain.CartRecord, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Remove(ctx, itemID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CartRecord), nil
}

func (b *Breaker) RemoveAll(ctx context.Context, userID string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.RemoveAll(ctx, userID)
	})
	return err
}

// Ping bypasses the breaker: the connectivity monitor needs to observe the
// real remote state to know when to close the loop again.
func (b *Breaker) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}
