package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/whisperwall/whisperwall/internal/dependencies/clock"
	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/services/auth"
	"github.com/whisperwall/whisperwall/internal/services/identity"
	"github.com/whisperwall/whisperwall/internal/services/password"
	"github.com/whisperwall/whisperwall/internal/services/secrets"
	"github.com/whisperwall/whisperwall/internal/services/session"
	"github.com/whisperwall/whisperwall/internal/storage"
	"github.com/whisperwall/whisperwall/internal/storage/memory"
	redisstorage "github.com/whisperwall/whisperwall/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Verifier       *password.Verifier
	Reconciler     *identity.Reconciler
	SessionManager *session.Manager
	Gateway        *auth.Gateway
	SecretsService *secrets.Service
}

// Config holds configuration for the application factory
type Config struct {
	// PasswordParams tunes the password hasher (optional)
	// If zero value, defaults to password.DefaultParams()
	PasswordParams password.Params
	// SessionConfig holds configuration for the session manager (optional)
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, cfg.PasswordParams, cfg.SessionConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, params password.Params, sessionCfg session.Config, logger *slog.Logger) *App {
	verifier := password.New(params)
	reconciler := identity.New(store, clk, rnd, logger)
	sessionManager := session.New(store, clk, rnd, sessionCfg)
	gateway := auth.New(store, verifier, reconciler, sessionManager, clk, rnd, logger)
	secretsService := secrets.New(store, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Verifier:       verifier,
		Reconciler:     reconciler,
		SessionManager: sessionManager,
		Gateway:        gateway,
		SecretsService: secretsService,
	}
}
