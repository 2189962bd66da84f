package extract

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
)

// Registry maps a detected Language to the Extractor capable of parsing
// it. Adding a language is a new registration plus a grammar — no
// inheritance is involved.
type Registry struct {
	extractors map[chunk.Language]Extractor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[chunk.Language]Extractor)}
}

// Register adds an extractor, keyed by its own Language().
func (r *Registry) Register(e Extractor) {
	r.extractors[e.Language()] = e
}

// DefaultRegistry returns a Registry with every extractor this package
// ships registered, for callers (the CLI, tests) that want the full
// language set rather than hand-picking a subset.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGoExtractor())
	r.Register(NewRustExtractor())
	r.Register(NewPythonExtractor())
	r.Register(NewTypeScriptExtractor())
	r.Register(NewJavaExtractor())
	r.Register(NewCExtractor())
	r.Register(NewCPPExtractor())
	r.Register(NewPHPExtractor())
	r.Register(NewRubyExtractor())
	return r
}

// Get returns the extractor for a language, if one is registered.
func (r *Registry) Get(lang chunk.Language) (Extractor, bool) {
	e, ok := r.extractors[lang]
	return e, ok
}

// extensions maps file extensions to languages. This is the first and
// primary detection signal; content sniffing is only a tie-break for
// ambiguous extensions (e.g. ".h").
var extensions = map[string]chunk.Language{
	".go":    chunk.LangGo,
	".rs":    chunk.LangRust,
	".py":    chunk.LangPython,
	".pyi":   chunk.LangPython,
	".ts":    chunk.LangTypeScript,
	".tsx":   chunk.LangTypeScript,
	".js":    chunk.LangJavaScript,
	".jsx":   chunk.LangJavaScript,
	".mjs":   chunk.LangJavaScript,
	".java":  chunk.LangJava,
	".c":     chunk.LangC,
	".h":     chunk.LangC,
	".cc":    chunk.LangCPP,
	".cpp":   chunk.LangCPP,
	".hpp":   chunk.LangCPP,
	".php":   chunk.LangPHP,
	".rb":    chunk.LangRuby,
}

// DetectLanguage returns the language for path, using its extension first
// and a content sniff as tie-break. Returns LangUnknown (and ok=false) if
// the extension is not recognised. A recognised language can still lack a
// registered extractor (JavaScript has none in DefaultRegistry); in either
// case the pipeline falls back to a single file-header chunk for the
// whole file.
func DetectLanguage(path string, content []byte) (chunk.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensions[ext]; ok {
		if ext == ".h" {
			return sniffHeader(content), true
		}
		return lang, true
	}
	return chunk.LangUnknown, false
}

// sniffHeader distinguishes C headers from C++ headers by a crude content
// sniff: presence of C++-only keywords tips the balance. ".h" files are
// valid in both languages, so the extension alone is ambiguous.
func sniffHeader(content []byte) chunk.Language {
	s := string(content)
	for _, marker := range []string{"class ", "namespace ", "template<", "template <", "std::"} {
		if strings.Contains(s, marker) {
			return chunk.LangCPP
		}
	}
	return chunk.LangC
}
