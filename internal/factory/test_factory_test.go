package factory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/spiderleague/internal/dependencies/mocks"
	"github.com/mcoot/spiderleague/internal/gist"
	"github.com/mcoot/spiderleague/internal/gist/gisttest"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/storage/memory"
	"github.com/mcoot/spiderleague/internal/testutil"
)

// Test credentials accepted by the fake Gist server
const (
	TestToken  = "ghp_testtoken"
	TestGistID = "league"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Server    *gisttest.Server
}

// NewTestServer starts a fake Gist API holding an empty league document
func NewTestServer(t testing.TB) *gisttest.Server {
	t.Helper()
	server := gisttest.New(t, TestToken)
	data, err := model.NewSharedDocument().Encode()
	if err != nil {
		t.Fatalf("encode empty document: %v", err)
	}
	server.CreateGist(TestGistID, map[string]string{model.DocumentFileName: string(data)})
	return server
}

// NewTestApp creates an App configured for testing with mocked
// dependencies, talking to its own fake Gist API. It is not configured yet.
func NewTestApp(t testing.TB) *TestApp {
	t.Helper()
	return NewTestAppWithServer(t, NewTestServer(t))
}

// NewTestAppWithServer creates a test App against an existing fake server,
// so several clients can share one document
func NewTestAppWithServer(t testing.TB, server *gisttest.Server) *TestApp {
	t.Helper()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	api := gist.NewClient(server.URL, nil)

	app := newWithDependencies(memory.New(), mockClock, api, Config{}, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Server:    server,
	}
}

// Configure points the app at the fake server's document
func (a *TestApp) Configure(ctx context.Context) error {
	return a.ConfigStore.Set(ctx, model.RemoteConfig{Token: TestToken, GistID: TestGistID})
}
