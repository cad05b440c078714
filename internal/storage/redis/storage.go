package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Claim the username first via SETNX so that concurrent registrations
	// with the same username cannot both succeed
	if user.Username != "" {
		claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrUsernameExists
		}
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	for provider, subject := range user.FederatedIDs {
		pipe.Set(ctx, federatedIndexKey(provider, subject), string(user.ID), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	if user.Username != "" {
		pipe.Set(ctx, usernameIndexKey(user.Username), string(user.ID), 0)
	}
	for provider, subject := range user.FederatedIDs {
		pipe.Set(ctx, federatedIndexKey(provider, subject), string(user.ID), 0)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	idStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(idStr))
}

func (s *Storage) FindOrCreateUserByFederatedID(ctx context.Context, provider, subject string, candidate *model.User) (*model.User, error) {
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, err
	}

	// Write the candidate record before claiming the index, so whichever
	// ID the index ends up pointing at is always resolvable
	if err := s.client.Set(ctx, userKey(candidate.ID), data, 0).Err(); err != nil {
		return nil, err
	}

	claimed, err := s.client.SetNX(ctx, federatedIndexKey(provider, subject), string(candidate.ID), 0).Result()
	if err != nil {
		return nil, err
	}
	if claimed {
		return candidate, nil
	}

	// Lost the race: discard the candidate and return the winner's record
	if err := s.client.Del(ctx, userKey(candidate.ID)).Err(); err != nil {
		return nil, err
	}
	idStr, err := s.client.Get(ctx, federatedIndexKey(provider, subject)).Result()
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(idStr))
}

// Secret operations

func (s *Storage) AppendSecret(ctx context.Context, id model.UserID, secret string) error {
	exists, err := s.client.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrUserNotFound
	}

	// Append and index in one pipeline; RPUSH preserves submission order
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, secretsKey(id), secret)
	pipe.SAdd(ctx, secretHoldersKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSecrets(ctx context.Context, id model.UserID) ([]string, error) {
	exists, err := s.client.Exists(ctx, userKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrUserNotFound
	}

	secrets, err := s.client.LRange(ctx, secretsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return secrets, nil
}

func (s *Storage) ListUserSecrets(ctx context.Context) ([]model.UserSecrets, error) {
	ids, err := s.client.SMembers(ctx, secretHoldersKey()).Result()
	if err != nil {
		return nil, err
	}

	var result []model.UserSecrets
	for _, id := range ids {
		secrets, err := s.client.LRange(ctx, secretsKey(model.UserID(id)), 0, -1).Result()
		if err != nil {
			return nil, err
		}
		if len(secrets) == 0 {
			continue
		}
		result = append(result, model.UserSecrets{UserID: model.UserID(id), Secrets: secrets})
	}
	return result, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}
