// Package pipeline drives the parse -> extract -> window-split -> hash ->
// assemble sequence for one file, following cortex's indexer/chunker.go +
// indexer/processor.go two-stage shape: a chunker that turns definitions
// into sized windows, and a processor that owns the per-file unit of
// work. Where cortex's chunker splits markdown by headers/paragraphs,
// this pipeline splits code definitions by line/byte caps, since the
// input here is a tree-sitter definition, not a markdown section.
package pipeline

import (
	"context"
	"fmt"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/extract"
	"github.com/mvp-joe/codemate/internal/graph"
)

// ParseError attaches a non-fatal parse failure to a file; the pipeline
// still returns whatever chunks were recovered for the rest of the file.
type ParseError struct {
	Path    string
	Err     error
	Partial bool
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Result is the complete output of processing one file.
type Result struct {
	Chunks      []chunk.Chunk
	Edges       []graph.Edge
	Imports     []extract.ImportRecord
	ParseErrors []ParseError
}

// Pipeline turns one file's bytes into chunks, graph edges, and import
// records, dispatching to the language extractor registered for the
// detected language.
type Pipeline struct {
	registry *extract.Registry
	chunking config.ChunkingConfig
}

// New builds a Pipeline backed by registry and configured with cfg's
// windowing parameters.
func New(registry *extract.Registry, cfg config.ChunkingConfig) *Pipeline {
	return &Pipeline{registry: registry, chunking: cfg}
}

// Process parses path's content, extracts its definitions/calls/imports,
// and assembles content-addressed chunks plus the graph edges a single
// file can determine on its own (CONTAINS always; CALLS/IMPORTS left
// unresolved, as symbol:<name>/external:<specifier> pending cross-file
// graph resolution). Extractor-level per-node failures are recovered inside
// internal/extract and never become a returned error; entries an extractor
// puts in Extraction.ParseErrors are copied to Result.ParseErrors (the
// extractors in internal/extract add none). Process only returns an error for inputs that prevent it from
// producing a Result at all (nil registry entry is not an error: unknown
// languages simply yield a single file-header chunk).
func (p *Pipeline) Process(ctx context.Context, path string, content []byte) (*Result, error) {
	lang, ok := extract.DetectLanguage(path, content)
	if !ok {
		return p.fileHeaderResult(path, content), nil
	}

	extractor, ok := p.registry.Get(lang)
	if !ok {
		return p.fileHeaderResult(path, content), nil
	}

	extraction, err := extractor.Extract(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("pipeline: extracting %s: %w", path, err)
	}

	result := &Result{Imports: extraction.Imports}
	for _, pe := range extraction.ParseErrors {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    pe.Path,
			Err:     fmt.Errorf("%s", pe.Message),
			Partial: true,
		})
	}

	chunksByDef := make([][]chunk.Chunk, len(extraction.Definitions))
	for i, def := range extraction.Definitions {
		chunksByDef[i] = windowDefinition(def, lang, p.chunking)
		result.Chunks = append(result.Chunks, chunksByDef[i]...)
	}

	result.Edges = buildEdges(path, extraction, chunksByDef)
	return result, nil
}

// fileHeaderResult is the fallback for files with no registered grammar:
// the whole file becomes a single file-header chunk, per spec.md's
// "no grammar available" edge case.
func (p *Pipeline) fileHeaderResult(path string, content []byte) *Result {
	text := string(content)
	lineCount := countLines(text)
	c := chunk.New(text, chunk.LangUnknown, chunk.KindFileHeader, path, "", "",
		chunk.Range{Start: 0, End: len(content)},
		chunk.Range{Start: 1, End: lineCount},
	)
	edge := graph.Edge{
		Source: "file:" + path,
		Target: "chunk:" + c.Hash.String(),
		Kind:   graph.EdgeContains,
	}
	return &Result{Chunks: []chunk.Chunk{c}, Edges: []graph.Edge{edge}}
}
