package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User is the single persisted identity record. A user may carry a local
// credential, any number of federated identities, or both; each is an
// independent authentication path into the same account.
type User struct {
	ID UserID `json:"id"`

	// Username is set only for locally-registered accounts
	Username string `json:"username,omitempty"`

	// PasswordHash and PasswordSalt are set only when a local credential
	// exists. The plaintext is never stored.
	PasswordHash []byte `json:"password_hash,omitempty"`
	PasswordSalt []byte `json:"password_salt,omitempty"`

	// FederatedIDs maps a provider name ("google", "facebook", ...) to the
	// subject identifier issued by that provider
	FederatedIDs map[string]string `json:"federated_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocalCredential reports whether a password has been set for this user
func (u *User) HasLocalCredential() bool {
	return len(u.PasswordHash) > 0
}

// UserSecrets pairs a user with the secrets they have submitted.
// Used by the gated secrets view, which only lists users holding
// at least one secret.
type UserSecrets struct {
	UserID  UserID   `json:"user_id"`
	Secrets []string `json:"secrets"`
}
