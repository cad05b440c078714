package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/whisperwall/whisperwall/internal/dependencies/clock"
	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/services/identity"
	"github.com/whisperwall/whisperwall/internal/services/password"
	"github.com/whisperwall/whisperwall/internal/services/session"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not authenticated")
)

// Gateway orchestrates credential verification, identity reconciliation,
// and session lifecycle behind a small set of verbs. It returns typed
// outcomes; the presentation layer decides what each one looks like to
// the user.
type Gateway struct {
	storage    storage.Storage
	verifier   *password.Verifier
	reconciler *identity.Reconciler
	sessions   *session.Manager
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
}

// New creates a new authentication Gateway
func New(
	store storage.Storage,
	verifier *password.Verifier,
	reconciler *identity.Reconciler,
	sessions *session.Manager,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		storage:    store,
		verifier:   verifier,
		reconciler: reconciler,
		sessions:   sessions,
		clock:      clk,
		random:     rnd,
		logger:     logger,
	}
}

// strategy is a single authentication path capable of resolving presented
// credentials to a user record. The gateway composes one per login verb;
// there is no global strategy registry.
type strategy interface {
	resolve(ctx context.Context) (*model.User, error)
}

// localStrategy authenticates a username/password pair against the store
type localStrategy struct {
	storage  storage.Storage
	verifier *password.Verifier
	username string
	password string
}

func (s *localStrategy) resolve(ctx context.Context) (*model.User, error) {
	user, err := s.storage.GetUserByUsername(ctx, s.username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Uniform failure: do not reveal which usernames exist
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.verifier.Verify(s.password, user.PasswordHash, user.PasswordSalt) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// federatedStrategy accepts a provider-vouched subject identity
type federatedStrategy struct {
	reconciler *identity.Reconciler
	provider   string
	subject    string
	claims     identity.Claims
}

func (s *federatedStrategy) resolve(ctx context.Context) (*model.User, error) {
	return s.reconciler.Resolve(ctx, s.provider, s.subject, s.claims)
}

// authenticate resolves a strategy and starts a session. No session is
// started on any path that has not confirmed success.
func (g *Gateway) authenticate(ctx context.Context, strat strategy) (*session.Session, error) {
	user, err := strat.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return g.sessions.Start(ctx, user)
}

// Register creates a local-credential account and immediately starts a
// session (registration implies login). A taken username fails with
// model.ErrUsernameExists.
func (g *Gateway) Register(ctx context.Context, username, plaintext string) (*session.Session, error) {
	hash, salt, err := g.verifier.Hash(plaintext)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	user := &model.User{
		ID:           model.UserID(g.random.ID("u_")),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store enforces username uniqueness atomically
	if err := g.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	g.logger.Info("registered user", slog.String("user_id", string(user.ID)))

	return g.sessions.Start(ctx, user)
}

// LoginLocal authenticates a username/password pair. Unknown username and
// wrong password fail identically with ErrInvalidCredentials.
func (g *Gateway) LoginLocal(ctx context.Context, username, plaintext string) (*session.Session, error) {
	return g.authenticate(ctx, &localStrategy{
		storage:  g.storage,
		verifier: g.verifier,
		username: username,
		password: plaintext,
	})
}

// LoginFederated accepts a (provider, subject) identity already vouched for
// by the provider. The authentication step itself cannot fail; only storage
// errors are fatal.
func (g *Gateway) LoginFederated(ctx context.Context, provider, subject string, claims identity.Claims) (*session.Session, error) {
	return g.authenticate(ctx, &federatedStrategy{
		reconciler: g.reconciler,
		provider:   provider,
		subject:    subject,
		claims:     claims,
	})
}

// Logout ends the session for the given token; idempotent
func (g *Gateway) Logout(ctx context.Context, token string) error {
	return g.sessions.End(ctx, token)
}

// RequireAuthenticated is the single gate for every protected capability.
// It resolves the presented token to a user or fails with
// ErrUnauthenticated, which callers translate to a redirect to login.
func (g *Gateway) RequireAuthenticated(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	sess, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionInvalid) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &sess.User, nil
}
