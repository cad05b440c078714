package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/whisperwall/whisperwall/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{
		ID:        "u-1",
		Username:  "alice",
		CreatedAt: time.Now(),
	}

	err := s.storage.CreateUser(s.ctx, user)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(user.ID, retrieved.ID)
	s.Equal("alice", retrieved.Username)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestCreateUserDuplicateUsername() {
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "u-1", Username: "alice"})

	err := s.storage.CreateUser(s.ctx, &model.User{ID: "u-2", Username: "alice"})
	s.ErrorIs(err, model.ErrUsernameExists)

	// The first record is the one the username resolves to
	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), user.ID)
}

func (s *StorageSuite) TestCreateUserConcurrentSameUsername() {
	const attempts = 20

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = s.storage.CreateUser(s.ctx, &model.User{
				ID:       model.UserID("u-" + string(rune('a'+n))),
				Username: "contested",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrUsernameExists)
		}
	}
	s.Equal(1, succeeded)
}

func (s *StorageSuite) TestGetUserByUsername() {
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "u-1", Username: "alice"})

	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), user.ID)

	_, err = s.storage.GetUserByUsername(s.ctx, "bob")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestCreateUserWithoutUsername() {
	// Federated-only records have no username and must not collide
	err := s.storage.CreateUser(s.ctx, &model.User{ID: "u-1"})
	s.Require().NoError(err)
	err = s.storage.CreateUser(s.ctx, &model.User{ID: "u-2"})
	s.Require().NoError(err)
}

// Find-or-create tests

func (s *StorageSuite) TestFindOrCreateUserByFederatedIDCreates() {
	candidate := &model.User{
		ID:           "u-1",
		FederatedIDs: map[string]string{"google": "g-123"},
	}

	user, err := s.storage.FindOrCreateUserByFederatedID(s.ctx, "google", "g-123", candidate)
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), user.ID)

	// The record is persisted
	retrieved, err := s.storage.GetUser(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("g-123", retrieved.FederatedIDs["google"])
}

func (s *StorageSuite) TestFindOrCreateUserByFederatedIDFinds() {
	first := &model.User{ID: "u-1", FederatedIDs: map[string]string{"google": "g-123"}}
	_, _ = s.storage.FindOrCreateUserByFederatedID(s.ctx, "google", "g-123", first)

	second := &model.User{ID: "u-2", FederatedIDs: map[string]string{"google": "g-123"}}
	user, err := s.storage.FindOrCreateUserByFederatedID(s.ctx, "google", "g-123", second)
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), user.ID, "repeat lookups must resolve to the original record")

	// The losing candidate was not persisted
	_, err = s.storage.GetUser(s.ctx, "u-2")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestFindOrCreateUserByFederatedIDConcurrent() {
	const attempts = 20

	var wg sync.WaitGroup
	results := make([]*model.User, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			candidate := &model.User{
				ID:           model.UserID("u-" + string(rune('a'+n))),
				FederatedIDs: map[string]string{"facebook": "fb-77"},
			}
			user, err := s.storage.FindOrCreateUserByFederatedID(s.ctx, "facebook", "fb-77", candidate)
			s.NoError(err)
			results[n] = user
		}(i)
	}
	wg.Wait()

	for _, user := range results {
		s.Equal(results[0].ID, user.ID, "all concurrent callers must resolve to one record")
	}
}

func (s *StorageSuite) TestFederatedPairsAreProviderScoped() {
	_, _ = s.storage.FindOrCreateUserByFederatedID(s.ctx, "google", "77",
		&model.User{ID: "u-1", FederatedIDs: map[string]string{"google": "77"}})
	user, err := s.storage.FindOrCreateUserByFederatedID(s.ctx, "facebook", "77",
		&model.User{ID: "u-2", FederatedIDs: map[string]string{"facebook": "77"}})
	s.Require().NoError(err)
	s.Equal(model.UserID("u-2"), user.ID, "same subject under a different provider is a different identity")
}

// Secret tests

func (s *StorageSuite) TestAppendAndGetSecrets() {
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "u-1", Username: "alice"})

	s.Require().NoError(s.storage.AppendSecret(s.ctx, "u-1", "first"))
	s.Require().NoError(s.storage.AppendSecret(s.ctx, "u-1", "second"))

	secrets, err := s.storage.GetSecrets(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal([]string{"first", "second"}, secrets, "secrets keep submission order")
}

func (s *StorageSuite) TestAppendSecretUnknownUser() {
	err := s.storage.AppendSecret(s.ctx, "nonexistent", "x")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestListUserSecretsFiltersEmpty() {
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "u-1", Username: "alice"})
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "u-2", Username: "bob"})
	_ = s.storage.AppendSecret(s.ctx, "u-1", "only alice has one")

	all, err := s.storage.ListUserSecrets(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(model.UserID("u-1"), all[0].UserID)
	s.Equal([]string{"only alice has one"}, all[0].Secrets)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		Token:     "sess_abc",
		UserID:    "u-1",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "sess_abc")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), retrieved.UserID)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, &model.Session{Token: "sess_abc", UserID: "u-1"})

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "sess_abc"))

	_, err := s.storage.GetSession(s.ctx, "sess_abc")
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Idempotent
	s.NoError(s.storage.DeleteSession(s.ctx, "sess_abc"))
}
