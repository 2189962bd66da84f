package querydsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codemate/internal/cmerrors"
)

func TestParse_FreetextOnly(t *testing.T) {
	q, err := Parse("parse the config file")
	require.NoError(t, err)
	assert.Equal(t, "parse the config file", q.Freetext)
	assert.Empty(t, q.Filters)
}

func TestParse_SingleFilter(t *testing.T) {
	q, err := Parse("lang:rust parse config")
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, q.Values(KeyLang))
	assert.Equal(t, "parse config", q.Freetext)
}

func TestParse_CSVValuesFormOneMembershipSet(t *testing.T) {
	q, err := Parse("lang:rust,go")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rust", "go"}, q.Values(KeyLang))
}

func TestParse_RepeatedKeyUnionsIntoSameSet(t *testing.T) {
	q, err := Parse("lang:rust lang:go")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"rust", "go"}, q.Values(KeyLang))
}

func TestParse_UnknownKeyIsFreetext(t *testing.T) {
	q, err := Parse("foo:bar baz")
	require.NoError(t, err)
	assert.Equal(t, "foo:bar baz", q.Freetext)
	assert.Empty(t, q.Filters)
}

func TestParse_QuotedValueWithSpaces(t *testing.T) {
	q, err := Parse(`file:"my file.go" search term`)
	require.NoError(t, err)
	assert.Equal(t, []string{"my file.go"}, q.Values(KeyFile))
	assert.Equal(t, "search term", q.Freetext)
}

func TestParse_GlobInPathFilter(t *testing.T) {
	q, err := Parse("path:internal/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"internal/**"}, q.Values(KeyPath))
}

func TestParse_AfterRequiresISODate(t *testing.T) {
	_, err := Parse("after:not-a-date")
	require.Error(t, err)
	assert.Equal(t, cmerrors.ErrInvalidDate, cmerrors.CodeOf(err))
}

func TestParse_AfterAcceptsDateOnly(t *testing.T) {
	q, err := Parse("after:2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-15"}, q.Values(KeyAfter))
}

func TestParse_AfterAcceptsRFC3339(t *testing.T) {
	q, err := Parse("after:2024-01-15T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-15T10:00:00Z"}, q.Values(KeyAfter))
}

func TestCompileGlobs_MatchesExpectedPaths(t *testing.T) {
	globs, err := CompileGlobs([]string{"internal/**"})
	require.NoError(t, err)
	require.Len(t, globs, 1)
	assert.True(t, globs[0].Match("internal/storage/db.go"))
	assert.False(t, globs[0].Match("cmd/main.go"))
}

func TestIsGlobKey(t *testing.T) {
	assert.True(t, IsGlobKey(KeyFile))
	assert.True(t, IsGlobKey(KeyPath))
	assert.True(t, IsGlobKey(KeyIn))
	assert.False(t, IsGlobKey(KeyLang))
}

