package response

import (
	"time"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/services/session"
)

// User represents a user in API responses. Password material never
// crosses this boundary.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Providers []string  `json:"providers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	providers := make([]string, 0, len(u.FederatedIDs))
	for provider := range u.FederatedIDs {
		providers = append(providers, provider)
	}

	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Providers: providers,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *session.Session) AuthResponse {
	return AuthResponse{
		User:         UserFromModel(&s.User),
		SessionToken: s.Token,
	}
}

// SecretsResponse is the response for secret listing endpoints
type SecretsResponse struct {
	Secrets []string `json:"secrets"`
}
