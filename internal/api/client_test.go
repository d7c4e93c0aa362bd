package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quizgame/internal/api"
	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/middleware"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

func TestNewClientRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5000", "://bad"} {
		_, err := api.NewClient(api.Config{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestRegisterAndCurrentUser(t *testing.T) {
	env := stubenv.New(t)
	client := env.NewClient(t)
	ctx := context.Background()

	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.False(t, user.Authenticated)

	user, err = client.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, model.User{Authenticated: true, Username: "alice"}, user)

	user, err = client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = env.NewClient(t).Register(ctx, "alice", "secret1")
	assert.True(t, apierr.IsStatus(err, http.StatusBadRequest))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := stubenv.New(t)

	_, err := env.NewClient(t).Register(context.Background(), "alice", "abc")
	require.Error(t, err)
	assert.Equal(t, "Le mot de passe doit contenir au moins 6 caractères", apierr.UserMessage(err, "fallback"))
}

func TestLoginWithBadCredentials(t *testing.T) {
	env := stubenv.New(t)
	env.Backend.AddUser("alice", "password")

	_, err := env.NewClient(t).Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	assert.Equal(t, "Identifiant ou mot de passe incorrect", apierr.UserMessage(err, "fallback"))
}

func TestLogoutEndsSession(t *testing.T) {
	env := stubenv.New(t)
	client := env.Login(t, "alice")
	ctx := context.Background()

	require.NoError(t, client.Logout(ctx))

	_, err := client.Categories(ctx)
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	assert.Equal(t, "Please log in first", apierr.UserMessage(err, "fallback"))
}

func TestCookiesCarryTheSession(t *testing.T) {
	env := stubenv.New(t)
	original := env.Login(t, "alice")
	require.NotEmpty(t, original.Cookies())

	restored := env.NewClient(t)
	restored.SetCookies(original.Cookies())

	user, err := restored.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.True(t, user.Authenticated)
	assert.Equal(t, "alice", user.Username)
}

func TestPostWithoutBodySendsEmptyObject(t *testing.T) {
	var body string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		contentType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer server.Close()

	client, err := api.NewClient(api.Config{BaseURL: server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	require.NoError(t, client.CompleteGame(context.Background()))
	assert.Equal(t, "{}", body)
	assert.Equal(t, "application/json", contentType)
}

func TestTransportFailure(t *testing.T) {
	failing := middleware.RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client, err := api.NewClient(api.Config{BaseURL: "http://quiz.invalid", Transport: failing, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	_, err = client.Categories(context.Background())
	var transportErr *apierr.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "GET /api/matieres", transportErr.Op)
	assert.Equal(t, "Erreur de connexion", apierr.UserMessage(err, "Erreur de connexion"))
}

func TestMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := api.NewClient(api.Config{BaseURL: server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	_, err = client.HintCount(context.Background())
	var transportErr *apierr.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestEquipEmoteIsRejectedLocally(t *testing.T) {
	calls := 0
	counting := middleware.RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("unexpected request")
	})
	client, err := api.NewClient(api.Config{BaseURL: "http://quiz.invalid", Transport: counting, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	_, err = client.Equip(context.Background(), model.KindEmote, "fire")
	assert.ErrorIs(t, err, model.ErrNotEquippable)

	_, err = client.Catalog(context.Background(), "hats")
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestJoinBattleEscapesCode(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "battle_id": 7, "matiere": "maths"})
	}))
	defer server.Close()

	client, err := api.NewClient(api.Config{BaseURL: server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	joined, err := client.JoinBattle(context.Background(), "AB/C12")
	require.NoError(t, err)
	assert.Equal(t, "/api/battle/join/AB%2FC12", path)
	assert.Equal(t, model.BattleID(7), joined.ID)
}

func TestBattleWithoutSecondPlayer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":3,"code":"ABC123","matiere":"maths","player1_name":"alice","player2_name":null,
			"player1_score":0,"player2_score":0,"status":"waiting","player1_ready":false,"player2_ready":false}`))
	}))
	defer server.Close()

	client, err := api.NewClient(api.Config{BaseURL: server.URL, Logger: testutil.NopLogger()})
	require.NoError(t, err)

	battle, err := client.Battle(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "", battle.Player2Name)
	assert.Equal(t, model.BattleStatusWaiting, battle.Status)
	assert.False(t, battle.Matched())
}
