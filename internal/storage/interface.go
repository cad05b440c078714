package storage

import (
	"context"

	"github.com/whisperwall/whisperwall/internal/model"
)

// Storage defines the interface for data persistence.
//
// It is the single shared mutable resource in the system, so every
// operation must be atomic at the granularity of a single record.
// Uniqueness invariants (username, federated identity) are enforced
// here, not by caller-side check-then-act.
type Storage interface {
	// User operations
	//
	// CreateUser persists a new user, failing with model.ErrUsernameExists
	// if the username is already taken. Two concurrent creations with the
	// same username must not both succeed.
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// FindOrCreateUserByFederatedID returns the user owning the
	// (provider, subject) pair, persisting candidate as that owner if the
	// pair has never been seen. Check-and-insert is a single atomic step:
	// concurrent first sights of the same pair yield exactly one record,
	// and the loser receives the winner's record.
	FindOrCreateUserByFederatedID(ctx context.Context, provider, subject string, candidate *model.User) (*model.User, error)

	// Secret operations (append-only per user)
	AppendSecret(ctx context.Context, id model.UserID, secret string) error
	GetSecrets(ctx context.Context, id model.UserID) ([]string, error)
	// ListUserSecrets returns only users holding at least one secret
	ListUserSecrets(ctx context.Context) ([]model.UserSecrets, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
}
