package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rubySample = `require "logger"

# Widget does things.
class Widget
  # build does the work.
  def build
    helper
  end
end
`

func TestRubyExtractor_Extract(t *testing.T) {
	e := NewRubyExtractor()
	require.Equal(t, "ruby", string(e.Language()))

	out, err := e.Extract(context.Background(), "widget.rb", []byte(rubySample))
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)
	assert.Equal(t, "logger", out.Imports[0].Specifier)

	var class, method *Definition
	for i := range out.Definitions {
		d := &out.Definitions[i]
		switch d.SymbolName {
		case "Widget":
			class = d
		case "build":
			method = d
		}
	}
	require.NotNil(t, class)
	require.NotNil(t, method)
	assert.Equal(t, "Widget", method.Parent)
	assert.Contains(t, class.Docstring, "Widget does things.")
}
