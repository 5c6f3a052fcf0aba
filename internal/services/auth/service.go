package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/spiderleague/internal/dependencies/clock"
	"github.com/mcoot/spiderleague/internal/hooks"
	"github.com/mcoot/spiderleague/internal/model"
	"github.com/mcoot/spiderleague/internal/state"
)

// MinUsernameLength is the shortest username Register accepts
const MinUsernameLength = 3

// DocumentSync is the remote document the accounts live in
type DocumentSync interface {
	Load(ctx context.Context) bool
	Save(ctx context.Context) error
}

// Sessions records who is logged in
type Sessions interface {
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
}

// Service handles registration and login against the accounts in the
// shared document.
//
// Registration is not atomic across clients: the document is reloaded just
// before the uniqueness check, but another client can still save between
// that load and our save.
type Service struct {
	cache    *state.Cache
	remote   DocumentSync
	sessions Sessions
	hooks    *hooks.Registry
	clock    clock.Clock
	verifier CredentialVerifier
	logger   *slog.Logger
}

// New creates a new auth Service. A nil verifier means PlaintextVerifier.
func New(
	cache *state.Cache,
	remote DocumentSync,
	sessions Sessions,
	hooks *hooks.Registry,
	clock clock.Clock,
	verifier CredentialVerifier,
	logger *slog.Logger,
) *Service {
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &Service{
		cache:    cache,
		remote:   remote,
		sessions: sessions,
		hooks:    hooks,
		clock:    clock,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Register creates an account with the starting coins, saves the document
// and logs in. If the save fails the account stays in the cache but the
// session is not started.
func (s *Service) Register(ctx context.Context, username, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return nil, model.NewValidationError("username", fmt.Sprintf("must be at least %d characters", MinUsernameLength))
	}

	s.refresh(ctx)

	if s.cache.HasAccount(username) {
		return nil, fmt.Errorf("%w: %s", model.ErrUsernameTaken, username)
	}

	stored, err := s.verifier.Encode(password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode password: %w", err)
	}

	acc := model.Account{
		Username:  username,
		Password:  stored,
		Coins:     model.StartingCoins,
		// Stored timestamps carry milliseconds
		CreatedAt: s.clock.Now().Truncate(time.Millisecond),
	}
	s.cache.AddAccount(acc)

	if err := s.remote.Save(ctx); err != nil {
		s.logger.Warn("registration not saved", slog.String("username", username), slog.Any("error", err))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if err := s.sessions.Login(ctx, username); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("username", username))
	return &acc, nil
}

// Login checks the credentials against a freshly loaded document and starts
// a session. An unknown username and a wrong password fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	s.refresh(ctx)

	acc, ok := s.cache.Account(username)
	if !ok || !s.verifier.Verify(acc.Password, password) {
		s.logger.Info("login rejected", slog.String("username", username))
		return nil, model.ErrInvalidCredentials
	}

	if err := s.sessions.Login(ctx, username); err != nil {
		return nil, err
	}
	s.hooks.Fire(hooks.SpiderList)

	return &acc, nil
}

// Logout ends the current session
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// refresh reloads the document; on failure the current cache is used
func (s *Service) refresh(ctx context.Context) {
	if !s.remote.Load(ctx) {
		s.logger.Debug("using cached accounts")
	}
}

func validateCredentials(username, password string) error {
	var errs []error
	if username == "" {
		errs = append(errs, model.NewValidationError("username", "is required"))
	}
	if password == "" {
		errs = append(errs, model.NewValidationError("password", "is required"))
	}
	return errors.Join(errs...)
}
