package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/spiderleague/internal/dependencies/mocks"
	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/gist/gisttest"
	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/services/configstore"
	"github.com/mcoot/spiderleague/internal/services/remote"
	"github.com/mcoot/spiderleague/internal/services/session"
	"github.com/mcoot/spiderleague/internal/state"
	"github.com/mcoot/spiderleague/internal/storage/memory"
	"github.com/mcoot/spiderleague/internal/testutil"
)

const (
	testToken = "ghp_test"
	testGist  = "league"
)

type ServiceSuite struct {
	suite.Suite
	server   *gisttest.Server
	cache    *state.Cache
	remote   *remote.StateClient
	sessions *session.Manager
	hooks    *hooks.Registry
	clock    *mocks.MockClock
	service  *Service
	fired    []hooks.Hook
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	logger := testutil.NopLogger()

	s.server = gisttest.New(s.T(), testToken)
	s.server.CreateGist(testGist, map[string]string{
		model.DocumentFileName: `{"spiders": [], "users": [{"username": "bob", "password": "hunter2", "coins": 15}], "tradeRequests": []}`,
	})

	local := memory.New()
	config := configstore.New(local, logger)
	s.Require().NoError(config.Set(s.ctx, model.RemoteConfig{Token: testToken, GistID: testGist}))

	s.hooks = hooks.New(logger)
	s.fired = nil
	for _, h := range []hooks.Hook{hooks.SpiderList, hooks.SessionPanel} {
		s.hooks.Register(h, func() { s.fired = append(s.fired, h) })
	}

	s.cache = state.New()
	s.remote = remote.New(gist.NewClient(s.server.URL, nil), config, s.cache, s.hooks, remote.DefaultConfig(), logger)
	s.sessions = session.New(local, s.hooks, logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.cache, s.remote, s.sessions, s.hooks, s.clock, nil, logger)
}

func (s *ServiceSuite) remoteDocument() model.SharedDocument {
	content, ok := s.server.Content(testGist, model.DocumentFileName)
	s.Require().True(ok)
	doc, err := model.ParseDocument([]byte(content))
	s.Require().NoError(err)
	return doc
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	acc, err := s.service.Register(s.ctx, "  nina ", "pw123")
	s.Require().NoError(err)

	s.Equal("nina", acc.Username)
	s.Equal(model.StartingCoins, acc.Coins)
	s.Equal(s.clock.Now(), acc.CreatedAt)

	username, ok := s.sessions.CurrentUsername()
	s.True(ok)
	s.Equal("nina", username)
}

func (s *ServiceSuite) TestRegisterSavesDocument() {
	_, err := s.service.Register(s.ctx, "nina", "pw123")
	s.Require().NoError(err)

	doc := s.remoteDocument()
	s.Require().Len(doc.Users, 2)
	s.Equal("bob", doc.Users[0].Username)
	s.Equal("nina", doc.Users[1].Username)
	s.Equal("pw123", doc.Users[1].Password)
	s.Equal(100, doc.Users[1].Coins)
}

func (s *ServiceSuite) TestRegisterCreatedAtMatchesStoredAccount() {
	s.clock.CurrentTime = time.Date(2024, 1, 1, 12, 0, 0, 123456789, time.UTC)

	acc, err := s.service.Register(s.ctx, "nina", "pw123")
	s.Require().NoError(err)

	s.Equal(time.Date(2024, 1, 1, 12, 0, 0, 123000000, time.UTC), acc.CreatedAt)
	s.Equal(acc.CreatedAt, s.remoteDocument().Users[1].CreatedAt)

	s.Require().True(s.remote.Load(s.ctx))
	loaded, ok := s.cache.Account("nina")
	s.Require().True(ok)
	s.Equal(*acc, loaded)
}

func (s *ServiceSuite) TestRegisterRejectsTakenUsername() {
	_, err := s.service.Register(s.ctx, "bob", "other")

	s.ErrorIs(err, model.ErrUsernameTaken)
	s.Len(s.cache.Accounts(), 1)
	s.Equal(0, s.server.RequestCount(http.MethodPatch))
	_, ok := s.sessions.CurrentUsername()
	s.False(ok)
}

func (s *ServiceSuite) TestRegisterChecksFreshDocument() {
	s.Require().True(s.remote.Load(s.ctx))
	s.server.CreateGist(testGist, map[string]string{
		model.DocumentFileName: `{"users": [{"username": "bob"}, {"username": "late"}]}`,
	})

	_, err := s.service.Register(s.ctx, "late", "pw")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterIsCaseSensitive() {
	_, err := s.service.Register(s.ctx, "Bob", "pw")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterValidation() {
	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"empty username", "", "pw", "username"},
		{"blank username", "   ", "pw", "username"},
		{"empty password", "nina", "", "password"},
		{"short username", "ab", "pw", "username"},
		{"short after trim", "  ab  ", "pw", "username"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Register(s.ctx, tt.username, tt.password)

			s.ErrorIs(err, model.ErrValidation)
			var verr *model.ValidationError
			s.Require().ErrorAs(err, &verr)
			s.Equal(tt.field, verr.Field)
		})
	}
	s.Empty(s.server.Requests())
}

func (s *ServiceSuite) TestRegisterSaveFailureDoesNotLogIn() {
	s.server.FailWith(http.StatusUnauthorized)

	_, err := s.service.Register(s.ctx, "nina", "pw123")

	s.ErrorIs(err, model.ErrNetworkOrAuthFailure)
	_, ok := s.sessions.CurrentUsername()
	s.False(ok)
	s.True(s.cache.HasAccount("nina"))
}

func (s *ServiceSuite) TestRegisterUnconfigured() {
	local := memory.New()
	config := configstore.New(local, testutil.NopLogger())
	cache := state.New()
	rc := remote.New(gist.NewClient(s.server.URL, nil), config, cache, s.hooks, remote.DefaultConfig(), testutil.NopLogger())
	svc := New(cache, rc, session.New(local, s.hooks, testutil.NopLogger()), s.hooks, s.clock, nil, testutil.NopLogger())

	_, err := svc.Register(s.ctx, "nina", "pw123")

	s.ErrorIs(err, model.ErrConfigurationMissing)
	s.Empty(s.server.Requests())
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	acc, err := s.service.Login(s.ctx, "bob", "hunter2")
	s.Require().NoError(err)

	s.Equal(15, acc.Coins)
	username, _ := s.sessions.CurrentUsername()
	s.Equal("bob", username)
	// load, then session start, then the login refresh
	s.Equal([]hooks.Hook{hooks.SpiderList, hooks.SessionPanel, hooks.SpiderList}, s.fired)
}

func (s *ServiceSuite) TestLoginInvalidCredentials() {
	_, wrongPassword := s.service.Login(s.ctx, "bob", "nope")
	_, unknownUser := s.service.Login(s.ctx, "nobody", "hunter2")

	s.ErrorIs(wrongPassword, model.ErrInvalidCredentials)
	s.ErrorIs(unknownUser, model.ErrInvalidCredentials)
	s.Equal(wrongPassword.Error(), unknownUser.Error())

	_, ok := s.sessions.CurrentUsername()
	s.False(ok)
	s.NotContains(s.fired, hooks.SessionPanel)
}

func (s *ServiceSuite) TestLoginRequiresBothFields() {
	_, err := s.service.Login(s.ctx, "bob", "")
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.service.Login(s.ctx, "", "")
	s.ErrorIs(err, model.ErrValidation)
	s.Empty(s.server.Requests())
}

func (s *ServiceSuite) TestLoginUsesCacheWhenLoadFails() {
	s.Require().True(s.remote.Load(s.ctx))
	s.server.FailWith(http.StatusBadGateway)

	_, err := s.service.Login(s.ctx, "bob", "hunter2")
	s.NoError(err)
}

func (s *ServiceSuite) TestLogout() {
	_, err := s.service.Login(s.ctx, "bob", "hunter2")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(s.ctx))

	_, ok := s.sessions.CurrentUsername()
	s.False(ok)
	s.True(s.cache.HasAccount("bob"))
}

// Verifier tests

func (s *ServiceSuite) TestBcryptVerifierRoundTrip() {
	svc := New(s.cache, s.remote, s.sessions, s.hooks, s.clock, BcryptVerifier{Cost: bcrypt.MinCost}, testutil.NopLogger())

	_, err := svc.Register(s.ctx, "nina", "pw123")
	s.Require().NoError(err)

	stored := s.remoteDocument().Users[1].Password
	s.NotEqual("pw123", stored)

	_, err = svc.Login(s.ctx, "nina", "pw123")
	s.NoError(err)
	_, err = svc.Login(s.ctx, "nina", "pw124")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	// a plaintext account cannot be verified as a hash
	_, err = svc.Login(s.ctx, "bob", "hunter2")
	s.ErrorIs(err, model.ErrInvalidCredentials)
}

func TestPlaintextVerifier(t *testing.T) {
	v := PlaintextVerifier{}
	stored, err := v.Encode("secret")
	if err != nil || stored != "secret" {
		t.Fatalf("Encode() = %q, %v", stored, err)
	}
	if !v.Verify("secret", "secret") {
		t.Error("expected match")
	}
	if v.Verify("secret", "Secret") || v.Verify("secret", "") {
		t.Error("expected mismatch")
	}
}
