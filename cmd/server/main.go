package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/whisperwall/whisperwall/internal/api"
	"github.com/whisperwall/whisperwall/internal/config"
	"github.com/whisperwall/whisperwall/internal/factory"
	"github.com/whisperwall/whisperwall/internal/services/session"
	redisstorage "github.com/whisperwall/whisperwall/internal/storage/redis"
	"github.com/whisperwall/whisperwall/internal/web"
	"github.com/whisperwall/whisperwall/internal/web/handler"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factoryCfg := factory.Config{
		Logger:        logger,
		StorageType:   cfg.StorageType,
		SessionConfig: session.Config{SessionDuration: cfg.SessionDuration},
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.SessionTTL = cfg.SessionDuration
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Random:         app.Random,
		Gateway:        app.Gateway,
		SecretsService: app.SecretsService,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		Random:         app.Random,
		Gateway:        app.Gateway,
		SecretsService: app.SecretsService,
		OAuthProviders: oauthProviders(cfg),
		StaticDir:      findStaticDir(),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// oauthProviders builds the external identity provider registry. Providers
// with no configured client credentials are left out.
func oauthProviders(cfg config.Config) map[string]handler.OAuthProvider {
	providers := make(map[string]handler.OAuthProvider)

	if cfg.GoogleClientID != "" {
		providers["google"] = handler.OAuthProvider{
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.BaseURL + "/auth/google/callback",
				Scopes:       []string{"openid", "profile", "email"},
				Endpoint:     google.Endpoint,
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		}
	}

	if cfg.FacebookClientID != "" {
		providers["facebook"] = handler.OAuthProvider{
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				RedirectURL:  cfg.BaseURL + "/auth/facebook/callback",
				Scopes:       []string{"public_profile", "email"},
				Endpoint:     facebook.Endpoint,
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		}
	}

	return providers
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return "internal/web/static"
}
