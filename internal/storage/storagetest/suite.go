// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spiderleague/internal/storage"
)

// Suite runs the common storage tests against the store built by New
type Suite struct {
	suite.Suite
	New func(t *testing.T) storage.Storage

	store storage.Storage
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.New(s.T())
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *Suite) TestGetMissingKey() {
	_, err := s.store.Get(s.ctx, "missing")
	s.ErrorIs(err, storage.ErrKeyNotFound)
}

func (s *Suite) TestSetAndGet() {
	s.Require().NoError(s.store.Set(s.ctx, storage.SessionKey, []byte("nina")))

	value, err := s.store.Get(s.ctx, storage.SessionKey)
	s.Require().NoError(err)
	s.Equal("nina", string(value))
}

func (s *Suite) TestSetOverwrites() {
	s.Require().NoError(s.store.Set(s.ctx, storage.ConfigKey, []byte(`{"gistId":"a"}`)))
	s.Require().NoError(s.store.Set(s.ctx, storage.ConfigKey, []byte(`{"gistId":"b"}`)))

	value, err := s.store.Get(s.ctx, storage.ConfigKey)
	s.Require().NoError(err)
	s.JSONEq(`{"gistId":"b"}`, string(value))
}

func (s *Suite) TestKeysAreIndependent() {
	s.Require().NoError(s.store.Set(s.ctx, storage.ConfigKey, []byte("config")))
	s.Require().NoError(s.store.Set(s.ctx, storage.SessionKey, []byte("user")))
	s.Require().NoError(s.store.Delete(s.ctx, storage.SessionKey))

	value, err := s.store.Get(s.ctx, storage.ConfigKey)
	s.Require().NoError(err)
	s.Equal("config", string(value))

	_, err = s.store.Get(s.ctx, storage.SessionKey)
	s.ErrorIs(err, storage.ErrKeyNotFound)
}

func (s *Suite) TestDeleteMissingKeyIsNoop() {
	s.NoError(s.store.Delete(s.ctx, "missing"))
}
