package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_HashMatchesContent(t *testing.T) {
	t.Parallel()

	c := New("fn helper() {}\n", LangRust, KindFunction, "helper", "fn helper()", "", Range{0, 15}, Range{1, 1})
	assert.Equal(t, SumContent("fn helper() {}\n"), c.Hash)
}

func TestNew_NormalisesLineEndings(t *testing.T) {
	t.Parallel()

	withCRLF := New("line1\r\nline2\r\n", LangGo, KindBlock, "", "", "", Range{}, Range{})
	withLF := New("line1\nline2\n", LangGo, KindBlock, "", "", "", Range{}, Range{})

	assert.Equal(t, withLF.Hash, withCRLF.Hash, "CRLF and LF content must hash identically")
	assert.Equal(t, "line1\nline2\n", withCRLF.Content)
}

func TestNew_IdenticalContentDedupes(t *testing.T) {
	t.Parallel()

	a := New("fn helper(){}", LangRust, KindFunction, "helper", "", "", Range{}, Range{})
	b := New("fn helper(){}", LangRust, KindFunction, "helper", "", "", Range{}, Range{})
	assert.Equal(t, a.Hash, b.Hash)
}
