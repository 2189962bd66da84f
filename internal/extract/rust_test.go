package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rustSample = `use std::fmt;

/// Widget is a thing.
struct Widget {
    name: String,
}

impl Widget {
    /// build does the work.
    fn build(&self) {
        helper();
    }
}

fn helper() {
}
`

func TestRustExtractor_Extract(t *testing.T) {
	e := NewRustExtractor()
	require.Equal(t, "rust", string(e.Language()))

	out, err := e.Extract(context.Background(), "widget.rs", []byte(rustSample))
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)
	assert.Equal(t, "std::fmt", out.Imports[0].Specifier)

	var st, method, fn *Definition
	for i := range out.Definitions {
		d := &out.Definitions[i]
		switch d.SymbolName {
		case "Widget":
			st = d
		case "build":
			method = d
		case "helper":
			fn = d
		}
	}
	require.NotNil(t, st)
	require.NotNil(t, method)
	require.NotNil(t, fn)
	assert.Equal(t, "Widget", method.Parent)
	assert.Contains(t, st.Docstring, "Widget is a thing.")
	assert.Contains(t, method.Docstring, "build does the work.")

	found := false
	for _, c := range out.Calls {
		if c.Callee == "helper" {
			found = true
		}
	}
	assert.True(t, found)
}
