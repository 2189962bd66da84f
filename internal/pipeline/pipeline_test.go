package pipeline

import (
	"context"
	"testing"

	"github.com/mvp-joe/codemate/internal/chunk"
	"github.com/mvp-joe/codemate/internal/config"
	"github.com/mvp-joe/codemate/internal/extract"
	"github.com/mvp-joe/codemate/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSample = `package widget

import "fmt"

// Server handles requests.
type Server struct {
	name string
}

// Start starts the server.
func (s *Server) Start() error {
	return helper()
}

// helper does the work.
func helper() error {
	fmt.Println("hi")
	return nil
}
`

func testRegistry() *extract.Registry {
	r := extract.NewRegistry()
	r.Register(extract.NewGoExtractor())
	return r
}

func testChunkingConfig() config.ChunkingConfig {
	return config.ChunkingConfig{MaxLines: 100, MaxBytes: 8192, OverlapLines: 10}
}

func TestPipeline_Process_EmitsChunksAndEdges(t *testing.T) {
	p := New(testRegistry(), testChunkingConfig())

	result, err := p.Process(context.Background(), "widget/server.go", []byte(goSample))
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	var serverChunk, startChunk *chunk.Chunk
	for i := range result.Chunks {
		c := &result.Chunks[i]
		switch c.SymbolName {
		case "Server":
			serverChunk = c
		case "Start":
			startChunk = c
		}
	}
	require.NotNil(t, serverChunk)
	require.NotNil(t, startChunk)
	assert.Equal(t, chunk.KindStruct, serverChunk.Kind)

	require.Len(t, result.Imports, 1)
	assert.Equal(t, "fmt", result.Imports[0].Specifier)

	foundContains := false
	for _, e := range result.Edges {
		if e.Kind == graph.EdgeContains && e.Source == "file:widget/server.go" && e.Target == "chunk:"+startChunk.Hash.String() {
			foundContains = true
		}
	}
	assert.True(t, foundContains, "expected a CONTAINS edge from the file to the Start chunk")

	foundCalls := false
	foundImports := false
	for _, e := range result.Edges {
		if e.Kind == graph.EdgeCalls && e.Target == "symbol:helper" {
			foundCalls = true
		}
		if e.Kind == graph.EdgeImports && e.Target == "external:fmt" {
			foundImports = true
		}
	}
	assert.True(t, foundCalls, "expected a CALLS edge to symbol:helper")
	assert.True(t, foundImports, "expected an IMPORTS edge to external:fmt")
}

func TestPipeline_Process_UnknownLanguageYieldsFileHeaderChunk(t *testing.T) {
	p := New(testRegistry(), testChunkingConfig())

	result, err := p.Process(context.Background(), "README.txt", []byte("hello world"))
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, chunk.KindFileHeader, result.Chunks[0].Kind)
	assert.Equal(t, chunk.LangUnknown, result.Chunks[0].Language)
}

func TestPipeline_Process_EmptyContent(t *testing.T) {
	p := New(testRegistry(), testChunkingConfig())

	result, err := p.Process(context.Background(), "empty.go", []byte("package widget\n"))
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
}

func TestWindowDefinition_SplitsOversizedDefinition(t *testing.T) {
	lines := make([]string, 0, 250)
	for i := 0; i < 250; i++ {
		lines = append(lines, "\tx := 1")
	}
	content := "func big() {\n"
	for _, l := range lines {
		content += l + "\n"
	}
	content += "}"

	def := extract.Definition{
		SymbolName: "big",
		Kind:       chunk.KindFunction,
		Signature:  "func big()",
		Content:    content,
		LineRange:  chunk.Range{Start: 1, End: countLines(content)},
	}

	cfg := config.ChunkingConfig{MaxLines: 100, MaxBytes: 8192, OverlapLines: 10}
	windows := windowDefinition(def, chunk.LangGo, cfg)

	require.Greater(t, len(windows), 1, "oversized definition should split into multiple windows")
	assert.Equal(t, "func big()", windows[0].Signature)
	for _, w := range windows[1:] {
		assert.Empty(t, w.Signature, "only the head window should carry the signature")
	}
}

func TestWindowDefinition_SmallDefinitionIsSingleChunk(t *testing.T) {
	def := extract.Definition{
		SymbolName: "helper",
		Kind:       chunk.KindFunction,
		Signature:  "func helper() error",
		Content:    "func helper() error {\n\treturn nil\n}",
		LineRange:  chunk.Range{Start: 1, End: 3},
	}

	cfg := testChunkingConfig()
	windows := windowDefinition(def, chunk.LangGo, cfg)
	require.Len(t, windows, 1)
	assert.Equal(t, def.Signature, windows[0].Signature)
}
