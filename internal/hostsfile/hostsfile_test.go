package hostsfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apex = "home.arpa."

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseEmptyPath(t *testing.T) {
	m, err := Parse("", apex)
	require.NoError(t, err)
	assert.Empty(t, m.IPs())
}

func TestParseBasic(t *testing.T) {
	path := writeTemp(t, "127.0.0.2 islay\n::2 islay\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"islay.home.arpa."}, m.Names("127.0.0.2"))
	assert.Equal(t, []string{"islay.home.arpa."}, m.Names("::2"))
}

func TestParseMultipleNamesPerLine(t *testing.T) {
	path := writeTemp(t, "10.0.0.1 a b c\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.home.arpa.", "b.home.arpa.", "c.home.arpa."}, m.Names("10.0.0.1"))
}

func TestParseSkipsBlankLinesAndComments(t *testing.T) {
	path := writeTemp(t, "\n# a full comment line\n10.0.0.1 host1 # trailing comment\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"host1.home.arpa."}, m.Names("10.0.0.1"))
}

func TestParseSkipsInvalidIP(t *testing.T) {
	path := writeTemp(t, "not-an-ip host1\n10.0.0.1 host2\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1"}, m.IPs())
	assert.Equal(t, []string{"host2.home.arpa."}, m.Names("10.0.0.1"))
}

func TestParseDropsInvalidNameButKeepsRest(t *testing.T) {
	path := writeTemp(t, "10.0.0.1 good. bad\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"bad.home.arpa."}, m.Names("10.0.0.1"))
}

func TestParseAppendsAcrossLines(t *testing.T) {
	path := writeTemp(t, "10.0.0.1 first\n10.0.0.1 second\n")
	m, err := Parse(path, apex)
	require.NoError(t, err)

	assert.Equal(t, []string{"first.home.arpa.", "second.home.arpa."}, m.Names("10.0.0.1"))
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse("/nonexistent/path/hosts", apex)
	assert.Error(t, err)
}
