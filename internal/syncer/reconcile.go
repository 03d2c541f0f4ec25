package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/gateway"
)

// reconcile runs the one-time merge performed when a session signs in. The
// conflict policy is explicit and deliberately coarse: the union of both
// carts keyed by variant, local quantity winning for matched keys, then the
// refetched remote set is taken verbatim as canonical (last-writer-wins at
// whole-reconciliation granularity). Per-item remote failures become queued
// changes instead of aborting the batch. Returns false when the coordinator
// should come out degraded.
func (c *Coordinator) reconcile(ctx context.Context) bool {
	remote, err := c.fetchAll(ctx)
	if err != nil {
		c.recordError(fmt.Sprintf("reconciliation fetch failed: %v", err))
		return false
	}

	byKey := make(map[domain.VariantKey]domain.CartRecord, len(remote))
	for _, rec := range remote {
		byKey[rec.Item().Key()] = rec
	}

	for _, it := range c.store.State().Items {
		rec, matched := byKey[it.Key()]
		if !matched {
			// present locally, absent remotely: push it up
			if err := c.applyChange(ctx, newChange(domain.ChangeAdd, it)); err != nil {
				log.Printf("reconciliation insert failed for %q: %v", it.Product.Name, err)
				c.enqueue(newChange(domain.ChangeAdd, it))
			}
			continue
		}
		if rec.Quantity != it.Quantity {
			// matched by key with differing quantity: local wins
			ch := newChange(domain.ChangeUpdate, it)
			ch.Item.ID = rec.ID
			if err := c.applyChange(ctx, ch); err != nil {
				log.Printf("reconciliation update failed for %q: %v", it.Product.Name, err)
				c.enqueue(ch)
			}
		}
		// items present remotely but absent locally need no call: the
		// canonical refetch below pulls them in (remote wins)
	}

	canon, err := c.fetchAll(ctx)
	if err != nil {
		c.recordError(fmt.Sprintf("reconciliation refetch failed: %v", err))
		return false
	}

	items := make([]domain.LineItem, 0, len(canon))
	for _, rec := range canon {
		items = append(items, rec.Item())
	}
	now := time.Now()
	c.store.Overwrite(ctx, items, now)
	c.lastSync = &now
	return true
}

func (c *Coordinator) fetchAll(ctx context.Context) ([]domain.CartRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	return c.remote.FetchAll(callCtx, c.userID)
}

// applyChange replays one change against the remote. Conflict responses mean
// another session already moved the row; the change is considered resolved.
func (c *Coordinator) applyChange(ctx context.Context, ch domain.PendingChange) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var err error
	switch ch.Kind {
	case domain.ChangeAdd:
		_, err = c.remote.Insert(callCtx, domain.NewRecord(c.userID, ch.Item))
		if errors.Is(err, gateway.ErrDuplicateItem) {
			return nil
		}
	case domain.ChangeUpdate:
		_, err = c.remote.Update(callCtx, ch.Item.ID, ch.Item.Quantity)
		if errors.Is(err, gateway.ErrItemNotFound) {
			return nil
		}
	case domain.ChangeRemove:
		_, err = c.remote.Remove(callCtx, ch.Item.ID)
		if errors.Is(err, gateway.ErrItemNotFound) {
			return nil
		}
	}
	return err
}

// drain replays the pending queue in enqueue order. Every change that keeps
// failing has its retry counter bumped; at the ceiling it is dropped and the
// loss is recorded in the error list.
func (c *Coordinator) drain(ctx context.Context) {
	c.stopDrainTimer()
	if c.phase == domain.PhaseUnauthenticated || !c.online || len(c.queue) == 0 {
		return
	}

	remaining := c.queue[:0]
	for _, ch := range c.queue {
		err := c.applyChange(ctx, ch)
		if err == nil {
			now := time.Now()
			c.lastSync = &now
			continue
		}

		ch.Attempts++
		if ch.Attempts >= c.cfg.RetryCeiling {
			c.recordError(fmt.Sprintf("dropped %s of %q after %d failed attempts: %v",
				ch.Kind, changeLabel(ch), ch.Attempts, err))
			continue
		}
		remaining = append(remaining, ch)
	}
	c.queue = remaining

	if len(c.queue) == 0 {
		c.phase = domain.PhaseSynced
		c.backoff = c.cfg.BaseBackoff
	} else {
		c.phase = domain.PhaseDegraded
		c.scheduleDrain()
	}
	c.publishStatus()
}

func changeLabel(ch domain.PendingChange) string {
	if ch.Item.Product.Name != "" {
		return ch.Item.Product.Name
	}
	return ch.Item.ID
}
