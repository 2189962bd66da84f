// Package extract implements the per-language extractor capability used by
// the chunking pipeline: each language extractor walks a tree-sitter parse
// tree and emits definitions, call sites, and import records for one file.
package extract

import (
	"context"

	"github.com/mvp-joe/codemate/internal/chunk"
)

// Definition is one syntactic definition found in a file: a function,
// method, class, struct, enum, trait/interface, impl block, or module.
// Its Content, ByteRange and LineRange span the definition node itself; a
// leading doc comment above it is not part of them and is carried in
// Docstring instead. Nested definitions (e.g. a method inside a class)
// get their own Definition *and* remain inside the enclosing definition's
// range — overlap is expected, not deduplicated at this layer.
type Definition struct {
	SymbolName string
	Kind       chunk.Kind
	Signature  string
	Docstring  string
	Content    string
	ByteRange  chunk.Range
	LineRange  chunk.Range
	// Parent is the short name of the enclosing definition (e.g. the
	// struct/class a method belongs to), empty for top-level definitions.
	Parent string
}

// CallSite is one identifier reference at call position, captured before
// FQN resolution. Resolution against the graph happens later, in the
// pipeline/graph stage.
type CallSite struct {
	// CallerSymbol is the short name of the enclosing definition, or ""
	// for a call made at file (top) level.
	CallerSymbol string
	Callee       string
	Line         int
}

// ImportRecord is one import/use/require statement.
type ImportRecord struct {
	Specifier string
	Line      int
}

// ParseError describes a parse failure in one file. The extractors in this
// package return it as Extract's error, with a nil Extraction, when the
// parser produces no tree at all.
type ParseError struct {
	Path    string
	Message string
}

func (e ParseError) Error() string {
	return e.Path + ": " + e.Message
}

// Extraction is the complete output of extracting one file.
type Extraction struct {
	Language    chunk.Language
	FilePath    string
	Definitions []Definition
	Calls       []CallSite
	Imports     []ImportRecord
	ParseErrors []ParseError
}

// Extractor is the per-language capability object: {grammar, definitions,
// calls, imports, docstring, signature} as described in spec.md §9. A
// registry (see Registry) maps a detected Language to its Extractor; no
// inheritance is used, only tagged dispatch on chunk.Language.
type Extractor interface {
	// Language returns the language this extractor handles.
	Language() chunk.Language

	// Extract walks source and returns everything the chunking pipeline
	// needs to assemble chunks and edges for one file. Extract never
	// returns an error for a per-node failure: a panic while visiting one
	// node is recovered and the walk goes on, so the rest of the file's
	// definitions are still usable. The extractors in this package record
	// nothing in Extraction.ParseErrors for such a node.
	Extract(ctx context.Context, path string, source []byte) (*Extraction, error)
}
