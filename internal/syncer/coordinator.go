// Package syncer reconciles the local cart store with the remote cart table.
// All sync state is owned by a single run loop; UI-facing mutations apply to
// the local store synchronously and hand the matching remote write to the
// loop, so call order from this session is preserved while the UI never
// blocks on the network.
package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdallahh166/luli-beads/internal/auth"
	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/store"
)

// SessionSource is the authentication-session observable the coordinator
// consumes. Subscribers get the session on sign-in and nil on sign-out.
type SessionSource interface {
	Current() *auth.Session
	Subscribe(fn func(*auth.Session)) func()
}

// ConnSignal is the online/offline observable.
type ConnSignal interface {
	Online() bool
	OnChange(fn func(bool)) func()
}

// Feed delivers remote-originated cart changes for a user.
type Feed interface {
	Subscribe(ctx context.Context, userID string, fn func(domain.FeedEvent)) (func(), error)
}

// RemoteCart matches the gateway surface the coordinator drives.
type RemoteCart interface {
	FetchAll(ctx context.Context, userID string) ([]domain.CartRecord, error)
	Insert(ctx context.Context, rec domain.CartRecord) (*domain.CartRecord, error)
	Update(ctx context.Context, itemID string, quantity int) (*domain.CartRecord, error)
	Remove(ctx context.Context, itemID string) (*domain.CartRecord, error)
	RemoveAll(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}

type Config struct {
	// RetryCeiling is the number of failed replays before a queued change
	// is dropped and reported.
	RetryCeiling int
	// BaseBackoff and MaxBackoff bound the delay between queue drain
	// passes while degraded.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// CallTimeout bounds each individual remote call.
	CallTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RetryCeiling: 3,
		BaseBackoff:  time.Second,
		MaxBackoff:   4 * time.Second,
		CallTimeout:  10 * time.Second,
	}
}

const maxErrors = 20

type opKind int

const (
	opMutation opKind = iota
	opClear
	opSession
	opConn
	opFeed
)

type op struct {
	kind    opKind
	change  domain.PendingChange
	cleared []domain.LineItem
	sess    *auth.Session
	online  bool
	event   domain.FeedEvent
}

type Coordinator struct {
	store    *store.CartStore
	remote   RemoteCart
	feed     Feed
	sessions SessionSource
	conn     ConnSignal
	cfg      Config

	ops chan op

	// loop-owned state
	phase      domain.SyncPhase
	online     bool
	lastSync   *time.Time
	queue      []domain.PendingChange
	syncErrors []string
	userID     string
	cancelFeed func()
	backoff    time.Duration
	drainTimer *time.Timer

	statusMu sync.Mutex
	status   domain.SyncStatus
	subs     map[int]func(domain.SyncStatus)
	nextSub  int
}

func New(st *store.CartStore, remote RemoteCart, fd Feed, sessions SessionSource, conn ConnSignal, cfg Config) *Coordinator {
	if cfg.RetryCeiling <= 0 {
		cfg = DefaultConfig()
	}
	return &Coordinator{
		store:    st,
		remote:   remote,
		feed:     fd,
		sessions: sessions,
		conn:     conn,
		cfg:      cfg,
		ops:      make(chan op, 256),
		phase:    domain.PhaseUnauthenticated,
		online:   true,
		backoff:  cfg.BaseBackoff,
		status:   domain.SyncStatus{Phase: domain.PhaseUnauthenticated, Online: true},
		subs:     make(map[int]func(domain.SyncStatus)),
	}
}

// Run owns all sync state until ctx is cancelled. Must be running for remote
// synchronization; local cart operations work either way.
func (c *Coordinator) Run(ctx context.Context) {
	unsubSess := c.sessions.Subscribe(func(s *auth.Session) {
		c.send(ctx, op{kind: opSession, sess: s})
	})
	defer unsubSess()
	unsubConn := c.conn.OnChange(func(online bool) {
		c.send(ctx, op{kind: opConn, online: online})
	})
	defer unsubConn()

	c.online = c.conn.Online()
	if s := c.sessions.Current(); s != nil {
		c.handleSession(ctx, s)
	}
	c.publishStatus()

	for {
		var drainCh <-chan time.Time
		if c.drainTimer != nil {
			drainCh = c.drainTimer.C
		}

		select {
		case o := <-c.ops:
			c.handle(ctx, o)
		case <-drainCh:
			c.drainTimer = nil
			c.drain(ctx)
		case <-ctx.Done():
			if c.cancelFeed != nil {
				c.cancelFeed()
			}
			return
		}
	}
}

// AddToCart applies the optimistic local update and returns the affected
// item immediately; the remote write happens behind it.
func (c *Coordinator) AddToCart(ctx context.Context, p domain.ProductSnapshot, qty int, color, handle, label string) domain.LineItem {
	it, merged := c.store.Add(ctx, p, qty, color, handle, label)

	kind := domain.ChangeAdd
	if merged {
		kind = domain.ChangeUpdate
	}
	c.send(ctx, op{kind: opMutation, change: newChange(kind, it)})
	return it
}

func (c *Coordinator) RemoveFromCart(ctx context.Context, itemID string) {
	if !c.store.Remove(ctx, itemID) {
		return
	}
	c.send(ctx, op{kind: opMutation, change: newChange(domain.ChangeRemove, domain.LineItem{ID: itemID})})
}

func (c *Coordinator) UpdateItemQuantity(ctx context.Context, itemID string, qty int) {
	if qty <= 0 {
		c.RemoveFromCart(ctx, itemID)
		return
	}
	it, ok := c.store.UpdateQuantity(ctx, itemID, qty)
	if !ok {
		return
	}
	c.send(ctx, op{kind: opMutation, change: newChange(domain.ChangeUpdate, it)})
}

func (c *Coordinator) ClearCart(ctx context.Context) {
	items := c.store.State().Items
	c.store.Clear(ctx)
	if len(items) > 0 {
		c.send(ctx, op{kind: opClear, cleared: items})
	}
}

func (c *Coordinator) CartState() store.CartState {
	return c.store.State()
}

// OnCart streams cart snapshots; delegates to the store's subscription.
func (c *Coordinator) OnCart(fn func(store.CartState)) func() {
	return c.store.OnChange(fn)
}

func (c *Coordinator) Status() domain.SyncStatus {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}

// OnStatus streams sync status snapshots, including retry-ceiling drops so
// the UI can surface permanently lost changes instead of hiding them.
func (c *Coordinator) OnStatus(fn func(domain.SyncStatus)) func() {
	c.statusMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.statusMu.Unlock()

	return func() {
		c.statusMu.Lock()
		delete(c.subs, id)
		c.statusMu.Unlock()
	}
}

func newChange(kind domain.ChangeKind, it domain.LineItem) domain.PendingChange {
	return domain.PendingChange{
		ID:       uuid.NewString(),
		Kind:     kind,
		Item:     it,
		QueuedAt: time.Now(),
	}
}

func (c *Coordinator) send(ctx context.Context, o op) {
	select {
	case c.ops <- o:
	case <-ctx.Done():
	}
}

func (c *Coordinator) handle(ctx context.Context, o op) {
	switch o.kind {
	case opMutation:
		c.handleMutation(ctx, o.change)
	case opClear:
		c.handleClear(ctx, o.cleared)
	case opSession:
		c.handleSession(ctx, o.sess)
	case opConn:
		c.handleConn(ctx, o.online)
	case opFeed:
		c.handleFeed(ctx, o.event)
	}
	c.publishStatus()
}

func (c *Coordinator) handleMutation(ctx context.Context, ch domain.PendingChange) {
	if c.phase == domain.PhaseUnauthenticated {
		return
	}
	// a non-empty queue means earlier changes have not landed yet; new
	// changes go behind them so replay order matches call order
	if !c.online || len(c.queue) > 0 {
		c.enqueue(ch)
		return
	}

	if err := c.applyChange(ctx, ch); err != nil {
		log.Printf("remote %s failed, queueing: %v", ch.Kind, err)
		c.enqueue(ch)
		return
	}
	c.markSynced()
}

func (c *Coordinator) handleClear(ctx context.Context, items []domain.LineItem) {
	if c.phase == domain.PhaseUnauthenticated {
		return
	}
	if c.online {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		err := c.remote.RemoveAll(callCtx, c.userID)
		cancel()
		if err == nil {
			c.markSynced()
			return
		}
		log.Printf("remote clear failed, queueing per-item removals: %v", err)
	}
	for _, it := range items {
		c.enqueue(newChange(domain.ChangeRemove, it))
	}
}

func (c *Coordinator) handleConn(ctx context.Context, online bool) {
	c.online = online
	if online && len(c.queue) > 0 {
		c.backoff = c.cfg.BaseBackoff
		c.drain(ctx)
	}
}

func (c *Coordinator) handleSession(ctx context.Context, s *auth.Session) {
	if c.cancelFeed != nil {
		c.cancelFeed()
		c.cancelFeed = nil
	}
	c.stopDrainTimer()
	c.queue = nil
	c.syncErrors = nil
	c.lastSync = nil
	c.backoff = c.cfg.BaseBackoff

	if s == nil {
		c.userID = ""
		c.phase = domain.PhaseUnauthenticated
		return
	}

	c.userID = s.UserID
	c.phase = domain.PhaseSyncing
	c.publishStatus()

	ok := c.reconcile(ctx)

	cancel, err := c.feed.Subscribe(ctx, c.userID, func(ev domain.FeedEvent) {
		c.send(ctx, op{kind: opFeed, event: ev})
	})
	if err != nil {
		c.recordError(fmt.Sprintf("change feed subscription failed: %v", err))
	} else {
		c.cancelFeed = cancel
	}

	if ok && len(c.queue) == 0 {
		c.phase = domain.PhaseSynced
	} else {
		c.phase = domain.PhaseDegraded
		c.scheduleDrain()
	}
}

// handleFeed merges a remote-originated change into the local store,
// regardless of the current phase (as long as a session exists).
func (c *Coordinator) handleFeed(ctx context.Context, ev domain.FeedEvent) {
	if c.phase == domain.PhaseUnauthenticated {
		return
	}

	switch ev.Type {
	case domain.FeedInsert:
		// inserts only add; an echo of this session's own insert must not
		// clobber local edits made since (the quantity may have moved on)
		if ev.New != nil && !c.store.Has(ev.New.ID) {
			c.store.Upsert(ctx, ev.New.Item())
		}
	case domain.FeedUpdate:
		// only existing items are overwritten; a concurrent local
		// removal wins until reconciliation says otherwise
		if ev.New != nil && c.store.Has(ev.New.ID) {
			c.store.Upsert(ctx, ev.New.Item())
		}
	case domain.FeedDelete:
		if ev.Old != nil {
			c.store.Remove(ctx, ev.Old.ID)
		}
	}

	now := time.Now()
	c.lastSync = &now
	c.store.SetLastSync(ctx, now)
}

func (c *Coordinator) enqueue(ch domain.PendingChange) {
	c.queue = append(c.queue, ch)
	c.phase = domain.PhaseDegraded
	c.scheduleDrain()
}

func (c *Coordinator) markSynced() {
	now := time.Now()
	c.lastSync = &now
	if len(c.queue) == 0 {
		c.phase = domain.PhaseSynced
	}
}

func (c *Coordinator) recordError(msg string) {
	c.syncErrors = append(c.syncErrors, msg)
	if len(c.syncErrors) > maxErrors {
		c.syncErrors = c.syncErrors[len(c.syncErrors)-maxErrors:]
	}
}

func (c *Coordinator) scheduleDrain() {
	if c.drainTimer != nil {
		return
	}
	c.drainTimer = time.NewTimer(c.backoff)
	next := c.backoff * 2
	if next > c.cfg.MaxBackoff {
		next = c.cfg.MaxBackoff
	}
	c.backoff = next
}

func (c *Coordinator) stopDrainTimer() {
	if c.drainTimer != nil {
		c.drainTimer.Stop()
		c.drainTimer = nil
	}
}

func (c *Coordinator) publishStatus() {
	st := domain.SyncStatus{
		Phase:      c.phase,
		Online:     c.online,
		LastSyncAt: c.lastSync,
		Pending:    len(c.queue),
		Errors:     append([]string(nil), c.syncErrors...),
	}

	c.statusMu.Lock()
	c.status = st
	fns := make([]func(domain.SyncStatus), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.statusMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
