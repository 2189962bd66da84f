package extract

import (
	"testing"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewGoExtractor())
	r.Register(NewPythonExtractor())

	e, ok := r.Get(chunk.LangGo)
	require.True(t, ok)
	assert.Equal(t, chunk.LangGo, e.Language())

	_, ok = r.Get(chunk.LangRust)
	assert.False(t, ok)
}

func TestDetectLanguage_ByExtension(t *testing.T) {
	cases := []struct {
		path string
		want chunk.Language
	}{
		{"main.go", chunk.LangGo},
		{"lib.rs", chunk.LangRust},
		{"script.py", chunk.LangPython},
		{"app.tsx", chunk.LangTypeScript},
		{"index.mjs", chunk.LangJavaScript},
		{"Main.java", chunk.LangJava},
		{"widget.c", chunk.LangC},
		{"widget.cpp", chunk.LangCPP},
		{"index.php", chunk.LangPHP},
		{"widget.rb", chunk.LangRuby},
	}
	for _, tc := range cases {
		got, ok := DetectLanguage(tc.path, nil)
		require.True(t, ok, tc.path)
		assert.Equal(t, tc.want, got, tc.path)
	}
}

func TestDetectLanguage_HeaderSniff(t *testing.T) {
	lang, ok := DetectLanguage("widget.h", []byte("class Widget {};"))
	require.True(t, ok)
	assert.Equal(t, chunk.LangCPP, lang)

	lang, ok = DetectLanguage("widget.h", []byte("struct widget { int x; };"))
	require.True(t, ok)
	assert.Equal(t, chunk.LangC, lang)
}

func TestDetectLanguage_Unknown(t *testing.T) {
	_, ok := DetectLanguage("README.md", nil)
	assert.False(t, ok)
}
