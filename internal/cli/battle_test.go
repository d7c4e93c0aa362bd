package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/factory"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

// hostBattle logs alice in and opens a battle lobby, with the package
// globals pointed at her app and the given terminal input
func hostBattle(t *testing.T, in io.Reader) (*factory.TestApp, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	host := factory.NewTestApp(t)
	host.Env.Backend.AddUser("alice", stubenv.DefaultPassword)
	_, err := host.AuthService.Login(ctx, "alice", stubenv.DefaultPassword)
	require.NoError(t, err)
	_, err = host.GameController.SelectCategory(ctx, "maths")
	require.NoError(t, err)
	_, err = host.BattleController.Create(ctx, "")
	require.NoError(t, err)

	return host, useApp(t, host, in)
}

// useApp points the package globals at a and returns the terminal screen
func useApp(t *testing.T, a *factory.TestApp, in io.Reader) *bytes.Buffer {
	t.Helper()
	prevApp, prevTTY, prevOut := app, tty, out
	t.Cleanup(func() { app, tty, out = prevApp, prevTTY, prevOut })

	var screen bytes.Buffer
	app = a.App
	tty = NewTerminal(in, &screen, false)
	out = NewOutput("text", io.Discard, io.Discard)
	return &screen
}

func TestReadyUp_WaitsForEnter(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	host, screen := hostBattle(t, r)
	ctx := context.Background()

	view := host.BattleController.View()
	require.Equal(t, model.PhaseWaiting, view.Phase)

	done := make(chan error, 1)
	go func() { done <- readyUp(ctx, view, true) }()

	assert.Never(t, func() bool {
		return host.BattleController.View().LocalReady
	}, 150*time.Millisecond, 10*time.Millisecond, "ready is sent only after the player confirms")

	_, err := w.Write([]byte("\n"))
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("readyUp did not return after Enter")
	}
	assert.True(t, host.BattleController.View().LocalReady)
	assert.Contains(t, screen.String(), "Press Enter when ready")
}

func TestReadyUp_EndOfInputQuits(t *testing.T) {
	host, _ := hostBattle(t, strings.NewReader(""))

	err := readyUp(context.Background(), host.BattleController.View(), true)
	assert.ErrorIs(t, err, errQuit)
	assert.False(t, host.BattleController.View().LocalReady)
}

func TestReadyUp_WithoutPromptReadiesAtOnce(t *testing.T) {
	host, screen := hostBattle(t, strings.NewReader(""))

	require.NoError(t, readyUp(context.Background(), host.BattleController.View(), false))
	assert.True(t, host.BattleController.View().LocalReady)
	assert.Empty(t, screen.String())
}

func TestReadyUp_SkipsWhenAlreadyReady(t *testing.T) {
	host, screen := hostBattle(t, strings.NewReader(""))

	view := host.BattleController.View()
	view.LocalReady = true
	require.NoError(t, readyUp(context.Background(), view, true))
	assert.Empty(t, screen.String(), "a matched battle is never asked for readiness")
}

// brokenStore fails every profile save
type brokenStore struct {
	storage.Storage
}

func (brokenStore) SaveProfile(ctx context.Context, profile *model.Profile) error {
	return errors.New("disk full")
}

func TestRememberBattle_LogsFailedSave(t *testing.T) {
	host, _ := hostBattle(t, strings.NewReader(""))
	var logs bytes.Buffer
	host.Storage = brokenStore{host.Storage}
	host.Logger = slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rememberBattle(context.Background(), 7)
	assert.Equal(t, model.BattleID(7), host.Profile.BattleID)
	assert.Contains(t, logs.String(), `"level":"WARN","msg":"failed to save battle id"`)
	assert.Contains(t, logs.String(), "disk full")
}

func TestApplyButtonColor_LogsFailure(t *testing.T) {
	a := factory.NewTestApp(t)
	useApp(t, a, strings.NewReader(""))
	var logs bytes.Buffer
	a.Logger = slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a.Env.Server.Close()

	applyButtonColor(context.Background())
	assert.Contains(t, logs.String(), `"level":"WARN","msg":"failed to apply button color"`)
}
