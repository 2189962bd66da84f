package chunk

import "time"

// Kind identifies the syntactic category a chunk represents.
type Kind string

const (
	KindFunction    Kind = "function"
	KindMethod      Kind = "method"
	KindClass       Kind = "class"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindInterface   Kind = "trait" // covers trait/interface, per spec.md
	KindImpl        Kind = "impl"
	KindModule      Kind = "module"
	KindConstant    Kind = "constant"
	KindTypeAlias   Kind = "type-alias"
	KindBlock       Kind = "block"
	KindFileHeader  Kind = "file-header"
)

// Language is a detected or declared source language. The zero value
// "unknown" is used when no grammar is available for a file.
type Language string

const (
	LangUnknown    Language = "unknown"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangPHP        Language = "php"
	LangRuby       Language = "ruby"
)

// Range is a half-open [Start, End) span, used for both byte and line
// ranges depending on context.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is the canonical, content-addressed unit stored by the engine.
// Invariant: Hash == SumContent(Content). Chunks are immutable once
// stored; they are never mutated, only re-located (see ChunkLocation).
type Chunk struct {
	Hash       ContentHash `json:"hash"`
	Content    string      `json:"content"`
	Language   Language    `json:"language"`
	Kind       Kind        `json:"kind"`
	SymbolName string      `json:"symbol_name,omitempty"`
	Signature  string      `json:"signature,omitempty"`
	Docstring  string      `json:"docstring,omitempty"`
	ByteRange  Range       `json:"byte_range"`
	LineRange  Range       `json:"line_range"`
}

// New assembles a Chunk from its extracted fields and computes its hash.
// This is the single construction path so that Hash == SumContent(Content)
// can never drift: every chunk in the system is built through New.
func New(content string, language Language, kind Kind, symbolName, signature, docstring string, byteRange, lineRange Range) Chunk {
	normalised := normaliseLineEndings(content)
	return Chunk{
		Hash:       SumContent(normalised),
		Content:    normalised,
		Language:   language,
		Kind:       kind,
		SymbolName: symbolName,
		Signature:  signature,
		Docstring:  docstring,
		ByteRange:  byteRange,
		LineRange:  lineRange,
	}
}

// Location is one observed occurrence of a chunk's content in a specific
// (repo, branch, commit, path, range). Uniquely identified by
// (ContentHash, RepoURI, CommitHash, FilePath, ByteRange.Start).
type Location struct {
	ContentHash   ContentHash `json:"content_hash"`
	RepoURI       string      `json:"repo_uri"`
	Branch        string      `json:"branch,omitempty"`
	CommitHash    string      `json:"commit_hash"`
	BlobHash      string      `json:"blob_hash"`
	FilePath      string      `json:"file_path"`
	ByteRange     Range       `json:"byte_range"`
	LineRange     Range       `json:"line_range"`
	Author        string      `json:"author,omitempty"`
	AuthoredAt    time.Time   `json:"authored_at,omitempty"`
	Committer     string      `json:"committer,omitempty"`
	CommittedAt   time.Time   `json:"committed_at,omitempty"`
	CommitMessage string      `json:"commit_message,omitempty"`
}
