package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/whisperwall/whisperwall/internal/dependencies/mocks"
	"github.com/whisperwall/whisperwall/internal/model"
	"github.com/whisperwall/whisperwall/internal/services/identity"
	"github.com/whisperwall/whisperwall/internal/services/password"
	"github.com/whisperwall/whisperwall/internal/services/session"
	"github.com/whisperwall/whisperwall/internal/storage/memory"
)

type GatewaySuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	gateway *Gateway
	ctx     context.Context
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rnd := mocks.NewMockRandom()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	verifier := password.New(password.Params{N: 1 << 4, R: 8, P: 1, SaltLen: 16, KeyLen: 32})
	reconciler := identity.New(s.storage, s.clock, rnd, logger)
	sessions := session.New(s.storage, s.clock, rnd, session.DefaultConfig())

	s.gateway = New(s.storage, verifier, reconciler, sessions, s.clock, rnd, logger)
	s.ctx = context.Background()
}

// Register tests

func (s *GatewaySuite) TestRegisterSucceedsAndStartsSession() {
	sess, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.NotEmpty(sess.Token)
	s.Equal("alice", sess.User.Username)

	// Registration implies login
	user, err := s.gateway.RequireAuthenticated(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(sess.UserID, user.ID)
}

func (s *GatewaySuite) TestRegisterStoresHashedCredential() {
	_, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEmpty(user.PasswordHash)
	s.NotEmpty(user.PasswordSalt)
	s.NotContains(string(user.PasswordHash), "pw1")
}

func (s *GatewaySuite) TestRegisterDuplicateUsername() {
	_, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	_, err = s.gateway.Register(s.ctx, "alice", "pw2")
	s.ErrorIs(err, model.ErrUsernameExists)

	// Exactly one record holds the username
	user, err := s.storage.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	first, err := s.gateway.LoginLocal(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Equal(user.ID, first.UserID)
}

func (s *GatewaySuite) TestRegisterFailureDoesNotStartSession() {
	_, _ = s.gateway.Register(s.ctx, "alice", "pw1")

	_, err := s.gateway.Register(s.ctx, "alice", "pw2")
	s.Require().Error(err)

	// No session was created for the failed attempt: the only sessions in
	// the store belong to the first registration
	_, err = s.gateway.LoginLocal(s.ctx, "alice", "pw2")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// LoginLocal tests

func (s *GatewaySuite) TestLoginLocalRoundTrips() {
	registered, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	sess, err := s.gateway.LoginLocal(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Equal(registered.UserID, sess.UserID, "login resolves to the registered id")
}

func (s *GatewaySuite) TestLoginLocalWrongPassword() {
	_, _ = s.gateway.Register(s.ctx, "alice", "pw1")

	_, err := s.gateway.LoginLocal(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *GatewaySuite) TestLoginLocalUnknownUsernameFailsUniformly() {
	_, _ = s.gateway.Register(s.ctx, "alice", "pw1")

	wrongPassword := s.gateway
	_, errUnknown := wrongPassword.LoginLocal(s.ctx, "nobody", "pw1")
	_, errWrongPw := wrongPassword.LoginLocal(s.ctx, "alice", "wrong")

	s.ErrorIs(errUnknown, ErrInvalidCredentials)
	s.ErrorIs(errWrongPw, ErrInvalidCredentials)
	s.Equal(errUnknown.Error(), errWrongPw.Error(), "failures must not reveal which usernames exist")
}

func (s *GatewaySuite) TestLoginLocalAgainstFederatedOnlyRecord() {
	// A federated-only user has no local credential; local login cannot
	// succeed against it even with an empty password
	sess, err := s.gateway.LoginFederated(s.ctx, "google", "g-123", identity.Claims{})
	s.Require().NoError(err)
	s.Empty(sess.User.Username)

	_, err = s.gateway.LoginLocal(s.ctx, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// LoginFederated tests

func (s *GatewaySuite) TestLoginFederatedCreatesAndAuthenticates() {
	sess, err := s.gateway.LoginFederated(s.ctx, "facebook", "fb-77", identity.Claims{})
	s.Require().NoError(err)

	user, err := s.gateway.RequireAuthenticated(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("fb-77", user.FederatedIDs["facebook"])
}

func (s *GatewaySuite) TestLoginFederatedIsIdempotent() {
	first, err := s.gateway.LoginFederated(s.ctx, "google", "g-123", identity.Claims{})
	s.Require().NoError(err)

	second, err := s.gateway.LoginFederated(s.ctx, "google", "g-123", identity.Claims{})
	s.Require().NoError(err)

	s.Equal(first.UserID, second.UserID, "repeat federated logins must not create a second record")
}

func (s *GatewaySuite) TestLocalThenFederatedStaysUnlinked() {
	local, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	federated, err := s.gateway.LoginFederated(s.ctx, "google", "g-alice", identity.Claims{
		DisplayName: "Alice",
		Email:       "alice@example.com",
	})
	s.Require().NoError(err)

	// Two unlinked records: reconciliation never merges by claims
	s.NotEqual(local.UserID, federated.UserID)
}

// RequireAuthenticated / Logout tests

func (s *GatewaySuite) TestRequireAuthenticatedBeforeAnyLogin() {
	_, err := s.gateway.RequireAuthenticated(s.ctx, "")
	s.ErrorIs(err, ErrUnauthenticated)

	_, err = s.gateway.RequireAuthenticated(s.ctx, "sess_forged")
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *GatewaySuite) TestRequireAuthenticatedAfterLogin() {
	sess, _ := s.gateway.Register(s.ctx, "alice", "pw1")

	user, err := s.gateway.RequireAuthenticated(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *GatewaySuite) TestLogoutInvalidatesReplayedToken() {
	sess, _ := s.gateway.Register(s.ctx, "alice", "pw1")

	s.Require().NoError(s.gateway.Logout(s.ctx, sess.Token))

	// Re-presenting the old token must fail
	_, err := s.gateway.RequireAuthenticated(s.ctx, sess.Token)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *GatewaySuite) TestLogoutIsIdempotent() {
	sess, _ := s.gateway.Register(s.ctx, "alice", "pw1")

	s.Require().NoError(s.gateway.Logout(s.ctx, sess.Token))
	s.Require().NoError(s.gateway.Logout(s.ctx, sess.Token))
}

func (s *GatewaySuite) TestExpiredSessionIsUnauthenticated() {
	sess, _ := s.gateway.Register(s.ctx, "alice", "pw1")

	s.clock.Advance(8 * 24 * time.Hour)

	_, err := s.gateway.RequireAuthenticated(s.ctx, sess.Token)
	s.ErrorIs(err, ErrUnauthenticated)
}

// End-to-end scenario from the design discussion

func (s *GatewaySuite) TestFullScenario() {
	// register("alice","pw1") -> Authenticated(A1)
	a1, err := s.gateway.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	// loginLocal("alice","pw1") in a fresh session -> same id
	again, err := s.gateway.LoginLocal(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Equal(a1.UserID, again.UserID)

	// loginLocal("alice","wrong") -> InvalidCredentials, no session
	_, err = s.gateway.LoginLocal(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	// loginFederated("facebook","fb-77") with no prior record -> new A2
	a2, err := s.gateway.LoginFederated(s.ctx, "facebook", "fb-77", identity.Claims{})
	s.Require().NoError(err)
	s.NotEqual(a1.UserID, a2.UserID)

	// Repeating the federated login -> still A2, no A3
	a2again, err := s.gateway.LoginFederated(s.ctx, "facebook", "fb-77", identity.Claims{})
	s.Require().NoError(err)
	s.Equal(a2.UserID, a2again.UserID)
}
