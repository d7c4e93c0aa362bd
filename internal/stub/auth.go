package stub

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
)

const minPasswordLength = 6

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		badRequest(w, "Tous les champs sont requis")
		return
	}
	if len(req.Password) < minPasswordLength {
		badRequest(w, "Le mot de passe doit contenir au moins 6 caractères")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		b.logger.Error("failed to hash password", slog.String("username", username), slog.String("error", err.Error()))
		apierr.WriteError(w, http.StatusInternalServerError, "Erreur serveur")
		return
	}

	b.mu.Lock()
	if _, exists := b.users[username]; exists {
		b.mu.Unlock()
		badRequest(w, "Ce nom d'utilisateur existe déjà")
		return
	}
	b.users[username] = newUser(username, hash)
	token := b.newSession(username)
	b.mu.Unlock()

	setSessionCookie(w, token)
	response.OK(w, response.AuthResponse{Success: true, Username: username})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		badRequest(w, "Tous les champs sont requis")
		return
	}

	b.mu.Lock()
	u, ok := b.users[username]
	var hash []byte
	if ok {
		hash = u.passwordHash
	}
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		apierr.WriteError(w, http.StatusUnauthorized, "Identifiant ou mot de passe incorrect")
		return
	}

	b.mu.Lock()
	token := b.newSession(username)
	b.mu.Unlock()

	setSessionCookie(w, token)
	response.OK(w, response.AuthResponse{Success: true, Username: username})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := sessionToken(r)

	b.mu.Lock()
	delete(b.sessions, token)
	delete(b.games, token)
	b.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	response.Done(w, "")
}

func (b *Backend) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	username := b.sessionUser(r)
	if username == "" {
		response.OK(w, response.CurrentUserResponse{Authenticated: false})
		return
	}
	response.OK(w, response.CurrentUserResponse{Authenticated: true, Username: username})
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}
