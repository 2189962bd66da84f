package cmerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	a := New(ErrChunkNotFound, KindNotFound, "chunk missing", nil)
	b := New(ErrChunkNotFound, KindNotFound, "different message", nil)
	c := New(ErrNodeNotFound, KindNotFound, "node missing", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrStorageWrite, KindStorageError, nil))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	wrapped := Wrap(ErrStorageWrite, KindStorageError, cause)
	require.NotNil(t, wrapped)
	assert.Same(t, cause, errors.Unwrap(wrapped))
	assert.Equal(t, KindStorageError, KindOf(wrapped))
}

func TestKindOf_NonCMError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("boom")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrInvalidQuerySyntax, KindInvalidQuery, "bad filter", nil).
		WithDetail("filter", "lang:").
		WithDetail("pos", "4")
	assert.Equal(t, "lang:", err.Details["filter"])
	assert.Equal(t, "4", err.Details["pos"])
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("wrapping: %w", New(ErrCommitNotFound, KindNotFound, "no such commit", nil))
	assert.Equal(t, ErrCommitNotFound, CodeOf(err))
}
