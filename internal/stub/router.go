package stub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/middleware"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// NewRouter serves the JSON API under /api and the battle channel at /ws
func NewRouter(b *Backend) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(b.logger))
	r.Use(middleware.Logging(b.logger))

	r.HandleFunc("/ws", b.serveChannel)
	r.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	protected := func(h http.HandlerFunc) http.Handler { return b.requireLogin(h) }

	// Session
	api.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)
	api.Handle("/logout", protected(b.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/current_user", b.handleCurrentUser).Methods(http.MethodGet)

	// Single player
	api.Handle("/matieres", protected(b.handleSubjects)).Methods(http.MethodGet)
	api.Handle("/categories", protected(b.handleGroups)).Methods(http.MethodGet)
	api.Handle("/start", protected(b.handleStart)).Methods(http.MethodPost)
	api.HandleFunc("/time_remaining", b.handleTimeRemaining).Methods(http.MethodGet)
	api.HandleFunc("/question", b.handleQuestion).Methods(http.MethodGet)
	api.HandleFunc("/answer", b.handleAnswer).Methods(http.MethodPost)
	api.HandleFunc("/start_revision", b.handleStartRevision).Methods(http.MethodPost)
	api.Handle("/stats", protected(b.handleStats)).Methods(http.MethodPost)
	api.Handle("/scores", protected(b.handleScores)).Methods(http.MethodPost)
	api.Handle("/scores/total", protected(b.handleTotalScores)).Methods(http.MethodPost)
	api.Handle("/save", protected(b.handleSave)).Methods(http.MethodPost)
	api.Handle("/check_saved", protected(b.handleCheckSaved)).Methods(http.MethodPost)
	api.Handle("/complete_game", protected(b.handleCompleteGame)).Methods(http.MethodPost)
	api.Handle("/restore", protected(b.handleRestore)).Methods(http.MethodPost)
	api.Handle("/game/use_hint", protected(b.handleUseHint)).Methods(http.MethodPost)
	api.Handle("/user/hints", protected(b.handleHintCount)).Methods(http.MethodGet)

	// Shop
	api.Handle("/shop/themes", protected(b.handleThemes)).Methods(http.MethodGet)
	api.Handle("/shop/buy", protected(b.handleBuyTheme)).Methods(http.MethodPost)
	api.Handle("/shop/equip", protected(b.handleEquipTheme)).Methods(http.MethodPost)
	api.Handle("/shop/buy_hints", protected(b.handleBuyHints)).Methods(http.MethodPost)
	api.Handle("/shop/button_colors", protected(b.handleButtonColors)).Methods(http.MethodGet)
	api.Handle("/shop/buy_button_color", protected(b.handleBuyButtonColor)).Methods(http.MethodPost)
	api.Handle("/shop/equip_button_color", protected(b.handleEquipButtonColor)).Methods(http.MethodPost)
	api.Handle("/shop/background_colors", protected(b.handleBackgroundColors)).Methods(http.MethodGet)
	api.Handle("/shop/buy_background_color", protected(b.handleBuyBackground)).Methods(http.MethodPost)
	api.Handle("/shop/equip_background_color", protected(b.handleEquipBackground)).Methods(http.MethodPost)
	api.Handle("/shop/emotes", protected(b.handleEmotes)).Methods(http.MethodGet)
	api.Handle("/shop/buy_emote", protected(b.handleBuyEmote)).Methods(http.MethodPost)
	api.Handle("/user/button_color", protected(b.handleUserButtonColor)).Methods(http.MethodGet)
	api.Handle("/dev/add_points", protected(b.handleAddPoints)).Methods(http.MethodPost)

	// Battle
	api.Handle("/battle/create", protected(b.handleCreateBattle)).Methods(http.MethodPost)
	api.Handle("/battle/join/{code}", protected(b.handleJoinBattle)).Methods(http.MethodPost)
	api.Handle("/battle/matchmaking", protected(b.handleMatchmaking)).Methods(http.MethodPost)
	api.Handle("/battle/cancel/{id:[0-9]+}", protected(b.handleCancelBattle)).Methods(http.MethodPost)
	api.Handle("/battle/{id:[0-9]+}", protected(b.handleGetBattle)).Methods(http.MethodGet)

	return r
}

// requireLogin redirects anonymous requests to the login page
func (b *Backend) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, username := b.lookupSession(r)
		if username == "" {
			http.Redirect(w, r, "/auth?next="+r.URL.Path, http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, username)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (b *Backend) lookupSession(r *http.Request) (string, string) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.sessions[c.Value]
	if !ok {
		return "", ""
	}
	if _, ok := b.users[username]; !ok {
		return "", ""
	}
	return c.Value, username
}

func (b *Backend) sessionUser(r *http.Request) string {
	_, username := b.lookupSession(r)
	return username
}

func sessionToken(r *http.Request) string {
	if token, ok := r.Context().Value(tokenKey).(string); ok {
		return token
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func currentUser(r *http.Request) string {
	username, _ := r.Context().Value(userKey).(string)
	return username
}

// decode reads an optional JSON body; an empty body leaves v untouched
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func badRequest(w http.ResponseWriter, msg string) {
	apierr.WriteError(w, http.StatusBadRequest, msg)
}
