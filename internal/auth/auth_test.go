package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInNotifiesSubscribers(t *testing.T) {
	b := NewBroker()

	var got *Session
	b.Subscribe(func(s *Session) { got = s })

	b.SignIn(Session{UserID: "user-1", Email: "a@b.c"})

	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	require.NotNil(t, b.Current())
	assert.Equal(t, "user-1", b.Current().UserID)
}

func TestSignOutDeliversNil(t *testing.T) {
	b := NewBroker()
	b.SignIn(Session{UserID: "user-1"})

	delivered := false
	var got *Session
	b.Subscribe(func(s *Session) {
		delivered = true
		got = s
	})

	b.SignOut()

	assert.True(t, delivered)
	assert.Nil(t, got)
	assert.Nil(t, b.Current())
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroker()

	var calls int
	unsub := b.Subscribe(func(*Session) { calls++ })

	b.SignIn(Session{UserID: "user-1"})
	unsub()
	b.SignOut()

	assert.Equal(t, 1, calls)
}

func TestResolveToken(t *testing.T) {
	b := NewBroker()

	assert.Nil(t, b.Resolve("anything"), "no session, no token resolves")

	token := b.SignIn(Session{UserID: "user-1"})
	require.NotEmpty(t, token)

	resolved := b.Resolve(token)
	require.NotNil(t, resolved)
	assert.Equal(t, "user-1", resolved.UserID)
	assert.Nil(t, b.Resolve("wrong-token"))
	assert.Nil(t, b.Resolve(""))

	b.SignOut()
	assert.Nil(t, b.Resolve(token), "token dies with the session")
}

func TestSignInRotatesToken(t *testing.T) {
	b := NewBroker()

	first := b.SignIn(Session{UserID: "user-1"})
	second := b.SignIn(Session{UserID: "user-2"})

	require.NotEqual(t, first, second)
	assert.Nil(t, b.Resolve(first), "old token invalid after re-sign-in")
	require.NotNil(t, b.Resolve(second))
	assert.Equal(t, "user-2", b.Resolve(second).UserID)
}

func TestCurrentReturnsCopy(t *testing.T) {
	b := NewBroker()
	b.SignIn(Session{UserID: "user-1"})

	first := b.Current()
	first.UserID = "mutated"

	assert.Equal(t, "user-1", b.Current().UserID)
}
