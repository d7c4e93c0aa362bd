package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage/memory"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Stub backend and mocks for test control
	Env          *stubenv.Env
	FakePrompter *testutil.FakePrompter
}

// NewTestApp creates an App wired to a stub backend with mocked clock and randomness
func NewTestApp(t testing.TB) *TestApp {
	t.Helper()
	env := stubenv.New(t)
	return NewTestAppFor(t, env, memory.New(), model.DefaultProfile)
}

// NewTestAppFor creates an App against an existing stub backend and profile store,
// as a second command invocation would see it
func NewTestAppFor(t testing.TB, env *stubenv.Env, store *memory.Storage, name model.ProfileName) *TestApp {
	t.Helper()
	prompter := testutil.NewFakePrompter()
	cfg := Config{ServerURL: env.Server.URL, Profile: name, Prompter: prompter}

	profile, err := loadProfile(context.Background(), store, cfg)
	require.NoError(t, err)

	app, err := newWithDependencies(cfg, store, profile, env.Clock, env.Random, testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &TestApp{App: app, Env: env, FakePrompter: prompter}
}
