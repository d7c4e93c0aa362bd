package realtime

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/testutil"
)

type echoServer struct {
	server   *httptest.Server
	received chan []byte
	cookies  chan string
	push     chan []byte
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	es := &echoServer{
		received: make(chan []byte, 8),
		cookies:  make(chan string, 1),
		push:     make(chan []byte, 8),
	}
	upgrader := websocket.Upgrader{}

	es.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		es.cookies <- r.Header.Get("Cookie")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = ws.Close() }()

		go func() {
			for data := range es.push {
				_ = ws.WriteMessage(websocket.TextMessage, data)
			}
		}()

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			es.received <- data
		}
	}))
	t.Cleanup(es.server.Close)
	return es
}

func TestConnEmitsAndReceives(t *testing.T) {
	es := newEchoServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	serverURL, _ := url.Parse(es.server.URL)
	jar.SetCookies(serverURL, []*http.Cookie{{Name: "session", Value: "abc"}})

	dialer, err := NewDialer(Config{ServerURL: es.server.URL, Jar: jar, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	ch, err := dialer.Connect(context.Background())
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	assert.Equal(t, "session=abc", <-es.cookies)

	require.NoError(t, ch.Emit(context.Background(), model.EventJoinBattle, model.JoinBattleMessage{BattleID: 3}))
	select {
	case data := <-es.received:
		assert.JSONEq(t, `{"event":"join_battle","data":{"battle_id":3}}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("server did not receive the emitted frame")
	}

	es.push <- []byte(`{"event":"mystery","data":{}}`)
	es.push <- []byte(`{"event":"player_joined","data":{"player2_name":"bob"}}`)
	select {
	case event := <-ch.Events():
		assert.Equal(t, model.EventPlayerJoined, event.Type)
		assert.Equal(t, model.PlayerJoinedPayload{Player2Name: "bob"}, event.Payload)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestConnEmitAfterCloseFails(t *testing.T) {
	es := newEchoServer(t)
	dialer, err := NewDialer(Config{ServerURL: es.server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	ch, err := dialer.Connect(context.Background())
	require.NoError(t, err)
	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())

	err = ch.Emit(context.Background(), model.EventReady, model.ReadyMessage{BattleID: 1})
	assert.ErrorIs(t, err, model.ErrChannelClosed)

	assert.Eventually(t, func() bool {
		_, open := <-ch.Events()
		return !open
	}, time.Second, time.Millisecond)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConnReaderPanicIsRecovered(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	// a missing socket makes the reader panic on its first read
	c := newConn(nil, clock.New(), logger)

	select {
	case _, ok := <-c.Events():
		assert.False(t, ok, "events close when the reader dies")
	case <-time.After(2 * time.Second):
		t.Fatal("events were not closed after the reader panicked")
	}
	assert.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, "panic recovered") && strings.Contains(out, "battle-channel-reader")
	}, 2*time.Second, 10*time.Millisecond)
}
