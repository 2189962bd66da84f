package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonSample = `import os


class Widget:
    """Widget does things."""

    def build(self):
        """build does the work."""
        helper()


def helper():
    pass
`

func TestPythonExtractor_Extract(t *testing.T) {
	e := NewPythonExtractor()
	require.Equal(t, "python", string(e.Language()))

	out, err := e.Extract(context.Background(), "widget.py", []byte(pythonSample))
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)

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
	assert.Contains(t, class.Docstring, "Widget does things.")
	assert.Contains(t, method.Docstring, "build does the work.")

	found := false
	for _, c := range out.Calls {
		if c.Callee == "helper" {
			found = true
		}
	}
	assert.True(t, found)
}
