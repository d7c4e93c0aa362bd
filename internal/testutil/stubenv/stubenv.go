// Package stubenv runs the stub backend for tests that drive the real client.
package stubenv

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/api"
	"github.com/mcoot/quizgame/internal/dependencies/mocks"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/realtime"
	"github.com/mcoot/quizgame/internal/stub"
	"github.com/mcoot/quizgame/internal/testutil"
)

// DefaultPassword is the password given to accounts created by Env.Login
const DefaultPassword = "password"

// Env is a stub backend served over httptest with a controllable clock
type Env struct {
	Backend *stub.Backend
	Server  *httptest.Server
	Clock   *mocks.MockClock
	Random  *mocks.MockRandom
}

// New starts a stub backend that is closed when the test ends.
// MockRandom keeps question and answer order as seeded, so the first
// proposed answer to every question is the correct one.
func New(t testing.TB) *Env {
	t.Helper()

	clk := mocks.NewMockClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	backend := stub.New(stub.Options{Clock: clk, Random: rnd, Logger: testutil.NopLogger()})
	server := httptest.NewServer(stub.NewRouter(backend))
	t.Cleanup(server.Close)

	return &Env{Backend: backend, Server: server, Clock: clk, Random: rnd}
}

// NewClient returns an anonymous client for the stub
func (e *Env) NewClient(t testing.TB) *api.Client {
	t.Helper()
	client, err := api.NewClient(api.Config{BaseURL: e.Server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)
	return client
}

// Login creates the account if needed and returns a client logged in as it
func (e *Env) Login(t testing.TB, username string) *api.Client {
	t.Helper()
	e.Backend.AddUser(username, DefaultPassword)
	client := e.NewClient(t)
	_, err := client.Login(context.Background(), username, DefaultPassword)
	require.NoError(t, err)
	return client
}

// Dialer returns a channel dialer sharing the client's session
func (e *Env) Dialer(t testing.TB, client *api.Client) *realtime.Dialer {
	t.Helper()
	dialer, err := realtime.NewDialer(realtime.Config{
		ServerURL: e.Server.URL,
		Jar:       client.Jar(),
		Clock:     e.Clock,
		Logger:    testutil.NopLogger(),
	})
	require.NoError(t, err)
	return dialer
}

// Connect opens a battle channel for the client and joins the battle room
func (e *Env) Connect(t testing.TB, client *api.Client, id model.BattleID) realtime.Channel {
	t.Helper()
	ch, err := e.Dialer(t, client).Connect(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	before := e.Backend.Hub().RoomSize(id)
	require.NoError(t, ch.Emit(context.Background(), model.EventJoinBattle, model.JoinBattleMessage{BattleID: id}))
	require.Eventually(t, func() bool {
		return e.Backend.Hub().RoomSize(id) > before
	}, time.Second, 5*time.Millisecond)
	return ch
}

// WaitEvent reads events until one of the given type arrives
func WaitEvent(t testing.TB, ch realtime.Channel, event model.EventType) model.Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch.Events():
			require.True(t, ok, "channel closed waiting for %s", event)
			if ev.Type == event {
				return ev
			}
		case <-timeout:
			require.FailNow(t, "timed out waiting for event", string(event))
			return model.Event{}
		}
	}
}

// NoEvent asserts that no event of the given type arrives within a short window
func NoEvent(t testing.TB, ch realtime.Channel, event model.EventType) {
	t.Helper()
	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				return
			}
			require.NotEqual(t, event, ev.Type, "unexpected %s event", event)
		case <-timeout:
			return
		}
	}
}
