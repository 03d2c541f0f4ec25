package netmon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOnlineNotifiesOnFlipOnly(t *testing.T) {
	m := New(func(ctx context.Context) error { return nil }, time.Hour)

	var calls []bool
	m.OnChange(func(online bool) { calls = append(calls, online) })

	m.SetOnline(true) // already online, no notification
	m.SetOnline(false)
	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, calls)
	assert.True(t, m.Online())
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	m := New(func(ctx context.Context) error { return nil }, time.Hour)

	var calls int
	unsub := m.OnChange(func(bool) { calls++ })

	m.SetOnline(false)
	unsub()
	m.SetOnline(true)

	assert.Equal(t, 1, calls)
}

func TestRunProbesAndFlips(t *testing.T) {
	var healthy atomic.Bool
	ping := func(ctx context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("unreachable")
	}

	m := New(ping, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 2*time.Millisecond)

	healthy.Store(true)
	require.Eventually(t, m.Online, time.Second, 2*time.Millisecond)
}
