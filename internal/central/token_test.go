package central

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTokenFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("filetoken\n"), 0o600))

	tok, err := ResolveToken(path)
	require.NoError(t, err)
	assert.Equal(t, "filetoken", tok)
}

func TestResolveTokenFromEnv(t *testing.T) {
	t.Setenv(centralTokenEnv, "envtoken")
	tok, err := ResolveToken("")
	require.NoError(t, err)
	assert.Equal(t, "envtoken", tok)
}

func TestResolveTokenMissing(t *testing.T) {
	t.Setenv(centralTokenEnv, "")
	_, err := ResolveToken("")
	assert.Error(t, err)
}
