package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spiderleague/internal/storage"
	"github.com/mcoot/spiderleague/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		New: func(t *testing.T) storage.Storage {
			s, err := Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
			require.NoError(t, err)
			return s
		},
	})
}

func TestEntriesSurviveReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "local.db")

	first, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, storage.SessionKey, []byte("nina")))
	require.NoError(t, first.Close())

	second, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	value, err := second.Get(ctx, storage.SessionKey)
	require.NoError(t, err)
	assert.Equal(t, "nina", string(value))
}
