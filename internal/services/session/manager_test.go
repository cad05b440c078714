package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/whisperwall/whisperwall/internal/dependencies/mocks"
	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/storage/memory"
)

type ManagerSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	manager *Manager
	ctx     context.Context
	user    *model.User
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.manager = New(s.storage, s.clock, mocks.NewMockRandom(), DefaultConfig())
	s.ctx = context.Background()

	s.user = &model.User{ID: "u-1", Username: "alice"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, s.user))
}

func (s *ManagerSuite) TestStartAndResolve() {
	sess, err := s.manager.Start(s.ctx, s.user)
	s.Require().NoError(err)
	s.NotEmpty(sess.Token)
	s.Equal(model.UserID("u-1"), sess.UserID)

	resolved, err := s.manager.Resolve(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), resolved.UserID)
	s.Equal("alice", resolved.User.Username)
}

func (s *ManagerSuite) TestSessionRecordHoldsOnlyUserID() {
	sess, err := s.manager.Start(s.ctx, s.user)
	s.Require().NoError(err)

	record, err := s.storage.GetSession(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), record.UserID)
	// Nothing beyond identifiers and timestamps is serialized
	s.Equal(model.Session{
		Token:     record.Token,
		UserID:    "u-1",
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, *record)
}

func (s *ManagerSuite) TestResolveUnknownToken() {
	_, err := s.manager.Resolve(s.ctx, "sess_forged")
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *ManagerSuite) TestResolveExpiredSession() {
	sess, _ := s.manager.Start(s.ctx, s.user)

	s.clock.Advance(8 * 24 * time.Hour)

	_, err := s.manager.Resolve(s.ctx, sess.Token)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *ManagerSuite) TestResolveWhenUserNoLongerExists() {
	ghost := &model.User{ID: "u-ghost"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, ghost))
	sess, _ := s.manager.Start(s.ctx, ghost)

	// Simulate the record disappearing out from under the session
	fresh := memory.New()
	record, err := s.storage.GetSession(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Require().NoError(fresh.SaveSession(s.ctx, record))

	stale := New(fresh, s.clock, mocks.NewMockRandom(), DefaultConfig())
	_, err = stale.Resolve(s.ctx, sess.Token)
	s.ErrorIs(err, ErrSessionInvalid, "an unresolvable id is an invalid session, not a crash")
}

func (s *ManagerSuite) TestEndInvalidatesToken() {
	sess, _ := s.manager.Start(s.ctx, s.user)

	s.Require().NoError(s.manager.End(s.ctx, sess.Token))

	_, err := s.manager.Resolve(s.ctx, sess.Token)
	s.ErrorIs(err, ErrSessionInvalid)
}

func (s *ManagerSuite) TestEndIsIdempotent() {
	sess, _ := s.manager.Start(s.ctx, s.user)

	s.Require().NoError(s.manager.End(s.ctx, sess.Token))
	s.Require().NoError(s.manager.End(s.ctx, sess.Token))
	s.Require().NoError(s.manager.End(s.ctx, "sess_never_existed"))
}

func (s *ManagerSuite) TestDistinctSessionsPerStart() {
	first, _ := s.manager.Start(s.ctx, s.user)
	second, _ := s.manager.Start(s.ctx, s.user)

	s.NotEqual(first.Token, second.Token)

	// Ending one leaves the other valid
	s.Require().NoError(s.manager.End(s.ctx, first.Token))
	_, err := s.manager.Resolve(s.ctx, second.Token)
	s.NoError(err)
}
