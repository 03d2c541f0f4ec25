package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/abdallahh166/luli-beads/internal/domain"
)

const notifyChannel = "cart_changes"

// PGFeed subscribes to the cart_changes NOTIFY channel fed by the
// cart_items_notify trigger. This is the database's own change feed: every
// committed row change arrives here, including echoes of this session's own
// writes, so the consumer's merge rules must tolerate stale echoes (inserts
// for items that already exist locally are skipped).
type PGFeed struct {
	dsn string
}

func NewPGFeed(dsn string) *PGFeed {
	return &PGFeed{dsn: dsn}
}

func (f *PGFeed) Subscribe(ctx context.Context, userID string, fn func(domain.FeedEvent)) (func(), error) {
	listener := pq.NewListener(f.dsn, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Printf("cart feed listener event %v: %v", ev, err)
			}
		})

	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer listener.Close()
		for {
			select {
			case n := <-listener.Notify:
				if n == nil {
					// reconnect; a full resync is the coordinator's
					// job if it cares about missed events
					continue
				}
				ev, err := decodeNotification([]byte(n.Extra))
				if err != nil {
					log.Printf("cart feed: bad notification payload: %v", err)
					continue
				}
				if eventUser(ev) != userID {
					continue
				}
				fn(ev)
			case <-time.After(90 * time.Second):
				go func() {
					if err := listener.Ping(); err != nil {
						log.Printf("cart feed ping failed: %v", err)
					}
				}()
			case <-subCtx.Done():
				return
			}
		}
	}()

	return cancel, nil
}

type pgNotification struct {
	Op  string             `json:"op"`
	New *domain.CartRecord `json:"new"`
	Old *domain.CartRecord `json:"old"`
}

func decodeNotification(payload []byte) (domain.FeedEvent, error) {
	var n pgNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return domain.FeedEvent{}, err
	}

	var typ domain.FeedEventType
	switch n.Op {
	case "INSERT":
		typ = domain.FeedInsert
	case "UPDATE":
		typ = domain.FeedUpdate
	case "DELETE":
		typ = domain.FeedDelete
	default:
		return domain.FeedEvent{}, fmt.Errorf("unknown operation %q", n.Op)
	}

	return domain.FeedEvent{Type: typ, New: n.New, Old: n.Old}, nil
}

func eventUser(ev domain.FeedEvent) string {
	if ev.New != nil {
		return ev.New.UserID
	}
	if ev.Old != nil {
		return ev.Old.UserID
	}
	return ""
}
