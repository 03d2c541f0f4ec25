package feed

import (
	"context"
	"log"

	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/gateway"
)

// PublishingGateway decorates a RemoteCart so every successful write is
// mirrored onto the Kafka fan-out topic. Publish failures are logged, never
// surfaced: the write itself succeeded and the periodic reconciliation covers
// missed fan-out.
type PublishingGateway struct {
	gateway.RemoteCart
	pub *Publisher
}

func NewPublishingGateway(next gateway.RemoteCart, pub *Publisher) *PublishingGateway {
	return &PublishingGateway{RemoteCart: next, pub: pub}
}

func (g *PublishingGateway) Insert(ctx context.Context, rec domain.CartRecord) (*domain.CartRecord, error) {
	inserted, err := g.RemoteCart.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	g.publish(ctx, domain.FeedEvent{Type: domain.FeedInsert, New: inserted})
	return inserted, nil
}

func (g *PublishingGateway) Update(ctx context.Context, itemID string, quantity int) (*domain.CartRecord, error) {
	updated, err := g.RemoteCart.Update(ctx, itemID, quantity)
	if err != nil {
		return nil, err
	}
	g.publish(ctx, domain.FeedEvent{Type: domain.FeedUpdate, New: updated})
	return updated, nil
}

func (g *PublishingGateway) Remove(ctx context.Context, itemID string) (*domain.CartRecord, error) {
	removed, err := g.RemoteCart.Remove(ctx, itemID)
	if err != nil {
		return nil, err
	}
	g.publish(ctx, domain.FeedEvent{Type: domain.FeedDelete, Old: removed})
	return removed, nil
}

func (g *PublishingGateway) publish(ctx context.Context, ev domain.FeedEvent) {
	if err := g.pub.Publish(ctx, ev); err != nil {
		log.Printf("cart feed publish error: %v", err)
	}
}
