package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/futig/rag-playground/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadOrCreate_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	first := NewStore(path, zap.NewNop())
	id, err := first.LoadOrCreate()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "session_"))

	second := NewStore(path, zap.NewNop())
	again, err := second.LoadOrCreate()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestLoadOrCreate_BlankFileGetsFreshID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	id, err := NewStore(path, zap.NewNop()).LoadOrCreate()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestReset_ReplacesID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	s := NewStore(path, zap.NewNop())

	id, err := s.LoadOrCreate()
	require.NoError(t, err)

	next, err := s.Reset()
	require.NoError(t, err)
	assert.NotEqual(t, id, next)
	assert.Equal(t, next, s.ID())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, next, strings.TrimSpace(string(data)))
}

func TestSet_AdoptsBackendID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	s := NewStore(path, zap.NewNop())
	_, err := s.LoadOrCreate()
	require.NoError(t, err)

	require.NoError(t, s.Set("server-issued"))
	assert.Equal(t, "server-issued", s.ID())

	require.NoError(t, s.Set(""))
	assert.Equal(t, "server-issued", s.ID())

	reloaded, err := NewStore(path, zap.NewNop()).LoadOrCreate()
	require.NoError(t, err)
	assert.Equal(t, "server-issued", reloaded)
}

func TestRequire_BeforeLoad(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session"), zap.NewNop())

	_, err := s.Require()
	assert.ErrorIs(t, err, entity.ErrSessionUnavailable)
}
