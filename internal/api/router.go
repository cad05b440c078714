package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/whisperwall/whisperwall/internal/api/handler"
	"github.com/whisperwall/whisperwall/internal/api/middleware"
	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/services/auth"
	"github.com/whisperwall/whisperwall/internal/services/secrets"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Random         random.Random
	Gateway        *auth.Gateway
	SecretsService *secrets.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	accountHandler := handler.NewAccountHandler(cfg.Gateway)
	secretsHandler := handler.NewSecretsHandler(cfg.SecretsService)

	authMiddleware := middleware.Auth(cfg.Gateway)
	loggingMiddleware := middleware.Logging(cfg.Logger, cfg.Random)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Account routes (no auth required to register or log in)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	accounts := api.PathPrefix("/accounts").Subrouter()
	accounts.Use(authMiddleware)
	accounts.HandleFunc("/logout", accountHandler.Logout).Methods(http.MethodPost)
	accounts.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)

	// Secret routes (all require auth)
	secretRoutes := api.PathPrefix("/secrets").Subrouter()
	secretRoutes.Use(authMiddleware)
	secretRoutes.HandleFunc("", secretsHandler.List).Methods(http.MethodGet)
	secretRoutes.HandleFunc("", secretsHandler.Submit).Methods(http.MethodPost)
	secretRoutes.HandleFunc("/mine", secretsHandler.Mine).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
