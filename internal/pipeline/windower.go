package pipeline

import (
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/extract"
)

// windowDefinition turns one extracted definition into one or more
// content-addressed chunks. Most definitions fit under both caps and
// become a single chunk; a definition exceeding MaxLines or MaxBytes is
// split into overlapping windows, following the same "finalize current,
// start next with overlap carried forward" shape cortex's chunker.go uses
// for oversized markdown paragraphs (splitByParagraphs/
// splitLargeParagraph), but keyed on line/byte caps instead of an
// estimated token budget, since code definitions have no paragraph
// structure to split on.
func windowDefinition(def extract.Definition, lang chunk.Language, cfg config.ChunkingConfig) []chunk.Chunk {
	if fitsWithinCaps(def, cfg) {
		return []chunk.Chunk{chunk.New(
			def.Content, lang, def.Kind, def.SymbolName, def.Signature, def.Docstring,
			def.ByteRange, def.LineRange,
		)}
	}

	lines := strings.Split(def.Content, "\n")
	windowSize := cfg.MaxLines
	overlap := cfg.OverlapLines
	if overlap >= windowSize {
		overlap = 0
	}

	var chunks []chunk.Chunk
	start := 0
	for start < len(lines) {
		end := start + windowSize
		if end > len(lines) {
			end = len(lines)
		}

		window := lines[start:end]
		// A byte cap on top of the line cap: shrink the window until it
		// fits, never below a single line.
		for len(strings.Join(window, "\n")) > cfg.MaxBytes && len(window) > 1 {
			window = window[:len(window)-1]
			end = start + len(window)
		}

		text := strings.Join(window, "\n")
		lineStart := def.LineRange.Start + start
		lineEnd := lineStart + len(window) - 1

		signature, docstring := "", ""
		if start == 0 {
			signature, docstring = def.Signature, def.Docstring
		}

		chunks = append(chunks, chunk.New(
			text, lang, def.Kind, def.SymbolName, signature, docstring,
			chunk.Range{Start: 0, End: len(text)},
			chunk.Range{Start: lineStart, End: lineEnd},
		))

		if end >= len(lines) {
			break
		}
		start = end - overlap
	}

	return chunks
}

func fitsWithinCaps(def extract.Definition, cfg config.ChunkingConfig) bool {
	lineCount := def.LineRange.End - def.LineRange.Start + 1
	if cfg.MaxLines > 0 && lineCount > cfg.MaxLines {
		return false
	}
	if cfg.MaxBytes > 0 && len(def.Content) > cfg.MaxBytes {
		return false
	}
	return true
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
