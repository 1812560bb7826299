package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/metrics"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/session"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/uploads"
)

// Default login throttling: a burst of 5 attempts, then one every 12 seconds.
const (
	DefaultLoginBurst    = 5
	DefaultLoginInterval = 12 * time.Second
)

// Options wires the router's collaborators. Uploads and Metrics are optional.
type Options struct {
	Store       store.Store
	Sessions    session.Store
	Secret      string
	SessionTTL  time.Duration
	Uploads     *uploads.Dir
	Metrics     *metrics.Metrics
	CORSOrigins []string

	// LoginBurst and LoginInterval override the login limiter defaults.
	LoginBurst    int
	LoginInterval time.Duration
}

// NewRouter creates the HTTP router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = DefaultLoginBurst
	}
	if opts.LoginInterval <= 0 {
		opts.LoginInterval = DefaultLoginInterval
	}

	authn := &authenticator{store: opts.Store, sessions: opts.Sessions, secret: opts.Secret}
	limiter := newLoginLimiter(rate.Every(opts.LoginInterval), opts.LoginBurst)

	authHandler := &AuthHandler{
		Store:      opts.Store,
		Sessions:   opts.Sessions,
		Secret:     opts.Secret,
		SessionTTL: opts.SessionTTL,
	}
	itemsHandler := &ItemsHandler{Store: opts.Store, Uploads: opts.Uploads}
	messagesHandler := &MessagesHandler{Store: opts.Store}

	r := chi.NewRouter()
	r.Use(LoggingMiddleware(opts.Metrics))
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public.
	r.Post("/api/auth/register", authHandler.Register)
	r.With(limiter.middleware).Post("/api/auth/login", authHandler.Login)
	r.Get("/api/items", itemsHandler.List)
	r.Get("/api/items/search", itemsHandler.Search)
	r.Get("/api/items/{id}", itemsHandler.Get)

	// Authenticated.
	r.Group(func(r chi.Router) {
		r.Use(authn.require)

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)

		r.Post("/api/items", itemsHandler.Create)
		r.Patch("/api/items/{id}", itemsHandler.Update)
		r.Delete("/api/items/{id}", itemsHandler.Delete)
		r.Get("/api/items/{id}/messages", itemsHandler.Messages)
		r.Get("/api/users/me/items", itemsHandler.Mine)

		r.Get("/api/messages", messagesHandler.List)
		r.Post("/api/messages", messagesHandler.Create)
		r.Patch("/api/messages/{id}/read", messagesHandler.MarkRead)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	if opts.Uploads != nil {
		r.Handle(opts.Uploads.URLPrefix+"/*", http.StripPrefix(opts.Uploads.URLPrefix+"/", http.FileServer(http.Dir(opts.Uploads.Root))))
	}

	return r
}
