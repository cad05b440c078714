package memory

import (
	"context"
	"sync"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users          map[model.UserID]*model.User
	usernameIndex  map[string]model.UserID
	federatedIndex map[federatedKey]model.UserID
	secrets        map[model.UserID][]string
	sessions       map[string]*model.Session
}

type federatedKey struct {
	provider string
	subject  string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:          make(map[model.UserID]*model.User),
		usernameIndex:  make(map[string]model.UserID),
		federatedIndex: make(map[federatedKey]model.UserID),
		secrets:        make(map[model.UserID][]string),
		sessions:       make(map[string]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check-and-insert under a single lock section
	if user.Username != "" {
		if _, taken := s.usernameIndex[user.Username]; taken {
			return model.ErrUsernameExists
		}
		s.usernameIndex[user.Username] = user.ID
	}
	s.users[user.ID] = user
	for provider, subject := range user.FederatedIDs {
		s.federatedIndex[federatedKey{provider, subject}] = user.ID
	}
	return nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	if user.Username != "" {
		s.usernameIndex[user.Username] = user.ID
	}
	for provider, subject := range user.FederatedIDs {
		s.federatedIndex[federatedKey{provider, subject}] = user.ID
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) FindOrCreateUserByFederatedID(ctx context.Context, provider, subject string, candidate *model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := federatedKey{provider, subject}
	if id, ok := s.federatedIndex[key]; ok {
		if user, ok := s.users[id]; ok {
			return user, nil
		}
	}

	s.federatedIndex[key] = candidate.ID
	s.users[candidate.ID] = candidate
	return candidate, nil
}

// Secret operations

func (s *Storage) AppendSecret(ctx context.Context, id model.UserID, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	s.secrets[id] = append(s.secrets[id], secret)
	return nil
}

func (s *Storage) GetSecrets(ctx context.Context, id model.UserID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; !ok {
		return nil, model.ErrUserNotFound
	}
	result := make([]string, len(s.secrets[id]))
	copy(result, s.secrets[id])
	return result, nil
}

func (s *Storage) ListUserSecrets(ctx context.Context) ([]model.UserSecrets, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.UserSecrets
	for id, secrets := range s.secrets {
		if len(secrets) == 0 {
			continue
		}
		copied := make([]string, len(secrets))
		copy(copied, secrets)
		result = append(result, model.UserSecrets{UserID: id, Secrets: copied})
	}
	return result, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
