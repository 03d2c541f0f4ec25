// Package feed delivers server-side cart row changes to interested sessions.
// Two transports exist: Postgres LISTEN/NOTIFY driven by a trigger on the
// cart table, and a Kafka topic for deployments that fan changes out across
// instances.
package feed

import (
	"context"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

// Feed is the subscription primitive. Delivered events are already scoped to
// the given user. The returned cancel func stops delivery.
type Feed interface {
	Subscribe(ctx context.Context, userID string, fn func(domain.FeedEvent)) (func(), error)
}
