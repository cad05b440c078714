package identity

import (
	"context"
	"log/slog"

	"github.com/whisperwall/whisperwall/internal/dependencies/clock"
	"github.com/whisperwall/whisperwall/internal/dependencies/random"
	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// Claims carries the profile assertions a provider returned alongside the
// subject identifier. They are informational only: reconciliation never
// matches on a claim, because claims can be spoofed and matching on one
// (e.g. email) would let an attacker silently merge into a victim's account.
type Claims struct {
	DisplayName string
	Email       string
}

// Reconciler maps a federated-provider identity onto a local user record,
// creating one on first sight. It is strictly additive: it never merges two
// existing records.
type Reconciler struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new Reconciler
func New(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		storage: store,
		clock:   clk,
		random:  rnd,
		logger:  logger,
	}
}

// Resolve returns the user owning the (provider, subject) pair, creating a
// fresh record if the pair has never been seen. Repeat logins are idempotent.
// A locally-registered person logging in via a provider for the first time
// gets a second, unlinked record; linking is an explicit future flow, never
// an implicit claim-based merge.
func (r *Reconciler) Resolve(ctx context.Context, provider, subject string, claims Claims) (*model.User, error) {
	now := r.clock.Now()
	candidate := &model.User{
		ID:           model.UserID(r.random.ID("u_")),
		FederatedIDs: map[string]string{provider: subject},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	user, err := r.storage.FindOrCreateUserByFederatedID(ctx, provider, subject, candidate)
	if err != nil {
		return nil, err
	}

	if user.ID == candidate.ID {
		r.logger.Info("created user for federated identity",
			slog.String("user_id", string(user.ID)),
			slog.String("provider", provider),
		)
	}

	return user, nil
}
