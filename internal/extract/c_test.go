package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cSample = `#include <stdio.h>

struct Point {
  int x;
  int y;
};

/* add sums two ints. */
int add(int a, int b) {
  return helper(a, b);
}
`

func TestCExtractor_Extract(t *testing.T) {
	e := NewCExtractor()
	require.Equal(t, "c", string(e.Language()))

	out, err := e.Extract(context.Background(), "point.c", []byte(cSample))
	require.NoError(t, err)
	require.Len(t, out.Imports, 1)
	assert.Equal(t, "stdio.h", out.Imports[0].Specifier)

	var st, fn *Definition
	for i := range out.Definitions {
		d := &out.Definitions[i]
		switch d.SymbolName {
		case "Point":
			st = d
		case "add":
			fn = d
		}
	}
	require.NotNil(t, st)
	require.NotNil(t, fn)
	assert.Contains(t, fn.Docstring, "add sums two ints.")
	require.NotEmpty(t, out.Calls)
	assert.Equal(t, "helper", out.Calls[0].Callee)
}
