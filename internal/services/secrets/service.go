package secrets

import (
	"context"
	"log/slog"
	"strings"

	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage"
)

// Service manages the anonymous secrets users submit and browse
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger,
	}
}

// Submit records a secret against the submitting user. Blank submissions
// are dropped without error so a stray form post doesn't pollute the wall.
func (s *Service) Submit(ctx context.Context, userID model.UserID, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}

	if err := s.storage.AppendSecret(ctx, userID, secret); err != nil {
		return err
	}

	s.logger.Info("secret submitted", "user_id", userID)
	return nil
}

// ListAll returns every secret on the wall. Secrets are anonymous to
// readers; authorship stays in the store and never leaves this method.
func (s *Service) ListAll(ctx context.Context) ([]string, error) {
	holders, err := s.storage.ListUserSecrets(ctx)
	if err != nil {
		return nil, err
	}

	var all []string
	for _, holder := range holders {
		all = append(all, holder.Secrets...)
	}
	return all, nil
}

// GetMine returns the secrets the given user has submitted
func (s *Service) GetMine(ctx context.Context, userID model.UserID) ([]string, error) {
	return s.storage.GetSecrets(ctx, userID)
}
