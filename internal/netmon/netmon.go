// Package netmon turns a remote health probe into an online/offline signal,
// the server-side stand-in for the browser's online and offline events.
package netmon

import (
	"context"
	"sync"
	"time"
)

// Monitor pings the remote on an interval and notifies subscribers when the
// reachability flips.
type Monitor struct {
	ping     func(ctx context.Context) error
	interval time.Duration

	mu      sync.Mutex
	online  bool
	subs    map[int]func(bool)
	nextSub int
}

func New(ping func(ctx context.Context) error, interval time.Duration) *Monitor {
	return &Monitor{
		ping:     ping,
		interval: interval,
		online:   true,
		subs:     make(map[int]func(bool)),
	}
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	m.SetOnline(m.ping(probeCtx) == nil)
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline flips the state directly. Used by the probe loop and by the
// explicit offline toggle.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// OnChange registers a subscriber for reachability flips. The returned func
// unsubscribes.
func (m *Monitor) OnChange(fn func(bool)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
