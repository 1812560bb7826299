package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/auth"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/model"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/session"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/validate"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	Store      store.Store
	Sessions   session.Store
	Secret     string
	SessionTTL time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.Register.Validate(body); err != nil {
		writeError(w, r, err)
		return
	}

	var in model.InsertUser
	if err := decodeJSON(body, &in); err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := h.Store.GetUserByUsername(r.Context(), in.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "username already taken")
		return
	}
	existing, err = h.Store.GetUserByEmail(r.Context(), in.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}

	in.Password, err = auth.HashPassword(in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.startSession(w, r, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "user", user.Username, "id", user.ID)
	jsonResponse(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validate.Login.Validate(body); err != nil {
		writeError(w, r, err)
		return
	}

	var req loginRequest
	if err := decodeJSON(body, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.startSession(w, r, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user logged in", "user", user.Username)
	jsonResponse(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r.Context()); sess != nil {
		if err := h.Sessions.Delete(r.Context(), sess.ID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   -1,
	})

	if user := CurrentUser(r.Context()); user != nil {
		slog.Info("user logged out", "user", user.Username)
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, CurrentUser(r.Context()))
}

// startSession creates a session for user, sets the cookie and returns the token.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) (string, error) {
	sess, err := h.Sessions.Create(r.Context(), user.ID, h.SessionTTL)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(h.Secret, sess.ID, user.ID, user.Username, sess.ExpiresAt)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		Expires:  sess.ExpiresAt,
	})
	return token, nil
}
