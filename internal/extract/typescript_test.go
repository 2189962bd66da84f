package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsSample = `import { Logger } from "./logger";

/**
 * Widget renders a thing.
 */
class Widget {
  /** build does the work. */
  build(): void {
    helper();
  }
}

function helper(): number {
  return 1;
}
`

func TestTypeScriptExtractor_Extract(t *testing.T) {
	e := NewTypeScriptExtractor()
	require.Equal(t, "typescript", string(e.Language()))

	out, err := e.Extract(context.Background(), "widget.ts", []byte(tsSample))
	require.NoError(t, err)
	require.NotNil(t, out)

	require.Len(t, out.Imports, 1)
	assert.Equal(t, "./logger", out.Imports[0].Specifier)

	var class, method, fn *Definition
	for i := range out.Definitions {
		d := &out.Definitions[i]
		switch d.SymbolName {
		case "Widget":
			class = d
		case "build":
			method = d
		case "helper":
			fn = d
		}
	}
	require.NotNil(t, class)
	require.NotNil(t, method)
	require.NotNil(t, fn)

	assert.Equal(t, "Widget", method.Parent)
	assert.Contains(t, class.Docstring, "Widget renders a thing.")
	assert.Contains(t, method.Docstring, "build does the work.")

	require.NotEmpty(t, out.Calls)
	found := false
	for _, c := range out.Calls {
		if c.Callee == "helper" && c.CallerSymbol == "build" {
			found = true
		}
	}
	assert.True(t, found, "expected a call from build -> helper")
}

func TestTypeScriptExtractor_EmptyFile(t *testing.T) {
	e := NewTypeScriptExtractor()
	out, err := e.Extract(context.Background(), "empty.ts", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, out.Definitions)
	assert.Empty(t, out.Imports)
}
