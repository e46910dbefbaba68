package dnsutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apex = "home.arpa."

func TestNormalizeBasic(t *testing.T) {
	got, err := Normalize("islay", apex)
	require.NoError(t, err)
	assert.Equal(t, "islay.home.arpa.", got)
}

func TestNormalizeTrimsAndCollapsesWhitespace(t *testing.T) {
	got, err := Normalize("  Joe Sixpack's  iMac ", apex)
	require.NoError(t, err)
	assert.Equal(t, "joe-sixpacks-imac.home.arpa.", got)
}

func TestNormalizeStripsDisallowedCharacters(t *testing.T) {
	got, err := Normalize("host!!name@@", apex)
	require.NoError(t, err)
	assert.Equal(t, "hostname.home.arpa.", got)
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	_, err := Normalize("   ", apex)
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestNormalizeRejectsBareDot(t *testing.T) {
	_, err := Normalize(".", apex)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestNormalizeRejectsTrailingDot(t *testing.T) {
	_, err := Normalize("host.", apex)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

// TestNormalizeIdempotentOnCleanLabel exercises the idempotence invariant:
// re-normalizing the bare label portion of an already-normalized name
// reproduces the same FQDN.
func TestNormalizeIdempotentOnCleanLabel(t *testing.T) {
	first, err := Normalize("Joe's Router", apex)
	require.NoError(t, err)

	label := strings.TrimSuffix(strings.TrimSuffix(first, apex), ".")
	second, err := Normalize(label, apex)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCanonicalMemberName(t *testing.T) {
	assert.Equal(t, "zt-abcd012345.home.arpa.", CanonicalMemberName("abcd012345", apex))
}

func TestWildcard(t *testing.T) {
	assert.Equal(t, "*.zt-abcd012345.home.arpa.", Wildcard("zt-abcd012345.home.arpa."))
}
