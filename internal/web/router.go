package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/services/auth"
	"github.com/whisperwall/whisperwall/internal/services/secrets"
	"github.com/whisperwall/whisperwall/internal/web/handler"
	"github.com/whisperwall/whisperwall/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger         *slog.Logger
	Random         random.Random
	Gateway        *auth.Gateway
	SecretsService *secrets.Service
	OAuthProviders map[string]handler.OAuthProvider
	StaticDir      string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	loggingMiddleware := middleware.Logging(cfg.Logger, cfg.Random)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	requireUser := middleware.RequireUser(cfg.Gateway)
	withUser := middleware.WithUser(cfg.Gateway)

	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	homeHandler := handler.NewHomeHandler()
	authHandler := handler.NewAuthHandler(cfg.Gateway)
	secretsHandler := handler.NewSecretsHandler(cfg.SecretsService, cfg.Logger)
	oauthHandler := handler.NewOAuthHandler(cfg.Gateway, cfg.OAuthProviders, cfg.Random, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Public routes (session resolved when present, for the nav)
	public := r.NewRoute().Subrouter()
	public.Use(flashMiddleware)
	public.Use(withUser)
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	public.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)

	// External identity provider handshake
	oauth := r.PathPrefix("/auth").Subrouter()
	oauth.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	oauth.HandleFunc("/{provider}", oauthHandler.Begin).Methods(http.MethodGet)
	oauth.HandleFunc("/{provider}/callback", oauthHandler.Callback).Methods(http.MethodGet)

	// Gated routes
	protected := r.NewRoute().Subrouter()
	protected.Use(flashMiddleware)
	protected.Use(requireUser)
	protected.HandleFunc("/secrets", secretsHandler.Wall).Methods(http.MethodGet)
	protected.HandleFunc("/submit", secretsHandler.SubmitPage).Methods(http.MethodGet)
	protected.HandleFunc("/submit", secretsHandler.Submit).Methods(http.MethodPost)

	return r
}
