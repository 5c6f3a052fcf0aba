package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/gist/gisttest"
	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/state"
	"github.com/mcoot/spiderleague/internal/testutil"
)

const (
	testToken = "ghp_test"
	testGist  = "league"
)

type staticConfig model.RemoteConfig

func (c *staticConfig) Get(ctx context.Context) model.RemoteConfig {
	return model.RemoteConfig(*c)
}

type StateClientSuite struct {
	suite.Suite
	server *gisttest.Server
	config *staticConfig
	cache  *state.Cache
	hooks  *hooks.Registry
	client *StateClient
	fired  []hooks.Hook
	ctx    context.Context
}

func TestStateClientSuite(t *testing.T) {
	suite.Run(t, new(StateClientSuite))
}

func (s *StateClientSuite) SetupTest() {
	s.server = gisttest.New(s.T(), testToken)
	s.server.CreateGist(testGist, map[string]string{
		model.DocumentFileName: `{
  "spiders": [{"id": "s1", "owner": "nina"}],
  "users": [{"username": "nina", "password": "pw123", "coins": 70}],
  "tradeRequests": [],
  "gameBalance": {"battleWinCoins": 25, "battleWinXP": 50, "spiderSubmitCoins": 50, "xpPerLevel": 100}
}`,
	})

	s.config = &staticConfig{Token: testToken, GistID: testGist}
	s.cache = state.New()
	s.hooks = hooks.New(testutil.NopLogger())
	s.fired = nil
	for _, h := range []hooks.Hook{hooks.SpiderList, hooks.BattleList, hooks.AdminPanel, hooks.CoinDisplay, hooks.SessionPanel} {
		s.hooks.Register(h, func() { s.fired = append(s.fired, h) })
	}

	api := gist.NewClient(s.server.URL, nil)
	s.client = New(api, s.config, s.cache, s.hooks, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

// Load tests

func (s *StateClientSuite) TestLoadReplacesCache() {
	s.Require().True(s.client.Load(s.ctx))

	acc, ok := s.cache.Account("nina")
	s.Require().True(ok)
	s.Equal(70, acc.Coins)
	s.Len(s.cache.Spiders(), 1)
}

func (s *StateClientSuite) TestLoadFiresRefreshHooksInOrder() {
	s.Require().True(s.client.Load(s.ctx))

	s.Equal([]hooks.Hook{hooks.SpiderList, hooks.BattleList, hooks.AdminPanel, hooks.CoinDisplay}, s.fired)
}

func (s *StateClientSuite) TestLoadWithoutHooksSucceeds() {
	client := New(gist.NewClient(s.server.URL, nil), s.config, s.cache, hooks.New(testutil.NopLogger()), DefaultConfig(), testutil.NopLogger())
	s.True(client.Load(s.ctx))
}

func (s *StateClientSuite) TestLoadDefaultsMissingTradeRequests() {
	s.server.CreateGist(testGist, map[string]string{
		model.DocumentFileName: `{"spiders": [], "users": []}`,
	})

	s.Require().True(s.client.Load(s.ctx))

	s.NotNil(s.cache.TradeRequests())
	s.Empty(s.cache.TradeRequests())
	s.Equal(model.DefaultGameBalance(), s.cache.GameBalance())
}

func (s *StateClientSuite) TestLoadUnconfiguredIsNoop() {
	*s.config = staticConfig{Token: testToken}

	s.False(s.client.Load(s.ctx))

	s.Empty(s.server.Requests())
	s.Empty(s.fired)
}

func (s *StateClientSuite) TestLoadMalformedLeavesCacheUntouched() {
	s.Require().True(s.client.Load(s.ctx))
	s.fired = nil

	s.server.CreateGist(testGist, map[string]string{model.DocumentFileName: `{ broken`})

	s.False(s.client.Load(s.ctx))
	acc, ok := s.cache.Account("nina")
	s.True(ok)
	s.Equal(70, acc.Coins)
	s.Empty(s.fired)
}

func (s *StateClientSuite) TestLoadNullDocumentLeavesCacheUntouched() {
	s.Require().True(s.client.Load(s.ctx))
	s.fired = nil

	for _, content := range []string{`null`, `{"users": [null]}`} {
		s.server.CreateGist(testGist, map[string]string{model.DocumentFileName: content})

		s.False(s.client.Load(s.ctx), content)
		s.Len(s.cache.Accounts(), 1, content)
		s.Len(s.cache.Spiders(), 1, content)
	}
	s.Empty(s.fired)
}

func (s *StateClientSuite) TestLoadMissingFileFails() {
	s.server.CreateGist(testGist, map[string]string{"other.json": "{}"})

	s.False(s.client.Load(s.ctx))
	s.Empty(s.cache.Accounts())
}

func (s *StateClientSuite) TestLoadAuthFailureLeavesCacheUntouched() {
	*s.config = staticConfig{Token: "wrong", GistID: testGist}

	s.False(s.client.Load(s.ctx))
	s.Empty(s.cache.Accounts())
}

func (s *StateClientSuite) TestLoadFollowsTruncatedFile() {
	s.server.SetTruncated(true)

	s.Require().True(s.client.Load(s.ctx))
	s.True(s.cache.HasAccount("nina"))
}

func (s *StateClientSuite) TestLoadLogsFailure() {
	logger, buf := testutil.CaptureLogger()
	client := New(gist.NewClient(s.server.URL, nil), s.config, s.cache, s.hooks, DefaultConfig(), logger)
	s.server.FailWith(http.StatusInternalServerError)

	s.False(client.Load(s.ctx))
	s.Contains(buf.String(), "load failed")
	s.Contains(buf.String(), "component=remote-state")
}

// Fetch tests

func (s *StateClientSuite) TestFetchDoesNotTouchCache() {
	doc, err := s.client.Fetch(s.ctx)
	s.Require().NoError(err)

	s.Len(doc.Users, 1)
	s.Empty(s.cache.Accounts())
	s.Empty(s.fired)
}

func (s *StateClientSuite) TestFetchReportsMalformedDocument() {
	s.server.CreateGist(testGist, map[string]string{model.DocumentFileName: `[]`})

	_, err := s.client.Fetch(s.ctx)
	s.ErrorIs(err, model.ErrMalformedDocument)
}

func (s *StateClientSuite) TestFetchUnconfigured() {
	*s.config = staticConfig{}

	_, err := s.client.Fetch(s.ctx)
	s.ErrorIs(err, model.ErrConfigurationMissing)
}

// Save tests

func (s *StateClientSuite) TestSaveWritesWholeCache() {
	s.Require().True(s.client.Load(s.ctx))
	s.cache.UpdateAccount("nina", func(a *model.Account) { a.Coins = 5 })

	s.Require().NoError(s.client.Save(s.ctx))

	content, _ := s.server.Content(testGist, model.DocumentFileName)
	doc, err := model.ParseDocument([]byte(content))
	s.Require().NoError(err)
	s.Equal(s.cache.Snapshot(), doc)
	s.Contains(content, "\n  \"users\": [")
}

func (s *StateClientSuite) TestSaveUnconfiguredMakesNoRequest() {
	*s.config = staticConfig{GistID: testGist}

	err := s.client.Save(s.ctx)

	s.ErrorIs(err, model.ErrConfigurationMissing)
	s.Empty(s.server.Requests())
}

func (s *StateClientSuite) TestSaveFailureReportsStatus() {
	s.server.FailWith(http.StatusForbidden)

	err := s.client.Save(s.ctx)

	s.ErrorIs(err, model.ErrNetworkOrAuthFailure)
	s.Contains(err.Error(), "403")
	s.Equal(1, s.server.RequestCount(http.MethodPatch))
}

func (s *StateClientSuite) TestSaveDoesNotRollBackCache() {
	s.Require().True(s.client.Load(s.ctx))
	s.cache.UpdateAccount("nina", func(a *model.Account) { a.Coins = 1 })
	s.server.FailWith(http.StatusBadGateway)

	s.Error(s.client.Save(s.ctx))

	acc, _ := s.cache.Account("nina")
	s.Equal(1, acc.Coins)
}

func (s *StateClientSuite) TestCustomFileName() {
	s.server.CreateGist(testGist, map[string]string{"test.json": `{"users": [{"username": "zed"}]}`})
	client := New(gist.NewClient(s.server.URL, nil), s.config, s.cache, s.hooks, Config{FileName: "test.json"}, testutil.NopLogger())

	s.Require().True(client.Load(s.ctx))
	s.True(s.cache.HasAccount("zed"))

	s.Require().NoError(client.Save(s.ctx))
	_, ok := s.server.Content(testGist, model.DocumentFileName)
	s.False(ok)
}
