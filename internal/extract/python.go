package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonExtractor walks a Python syntax tree. Adapted from cortex's
// internal/indexer/parsers/python.go (class/function/top-level-assignment
// traversal, isTopLevel check), extended with triple-quoted docstring
// capture (Python's docstring is the first string statement in a body,
// unlike every other language here where it is a leading comment) and
// call-site/import-specifier capture the teacher never recorded.
type pythonExtractor struct {
	treeSitterBase
}

// NewPythonExtractor returns an Extractor for Python source.
func NewPythonExtractor() Extractor {
	lang := sitter.NewLanguage(python.Language())
	return &pythonExtractor{treeSitterBase: newTreeSitterBase(lang, "python")}
}

func (e *pythonExtractor) Language() chunk.Language { return chunk.LangPython }

func (e *pythonExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "python: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangPython, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement", "import_from_statement":
			e.extractImport(n, source, out)
			return false
		case "class_definition":
			e.extractClass(n, source, out)
			return false
		case "function_definition":
			if isTopLevel(n) {
				e.extractFunction(n, source, out, "")
			}
		case "call":
			e.extractCall(n, source, out)
		}
		return true
	})

	return out, nil
}

func isTopLevel(node *sitter.Node) bool {
	p := node.Parent()
	for p != nil {
		switch p.Kind() {
		case "class_definition", "function_definition":
			return false
		case "module":
			return true
		}
		p = p.Parent()
	}
	return true
}

func (e *pythonExtractor) extractClass(n *sitter.Node, source []byte, out *Extraction) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	body := n.ChildByFieldName("body")
	doc := pythonDocstring(body, source)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       chunk.KindClass,
		Signature:  "class " + name,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
	})

	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(uint(i))
			if child.Kind() == "function_definition" {
				e.extractFunction(child, source, out, name)
			}
		}
	}
}

func (e *pythonExtractor) extractFunction(n *sitter.Node, source []byte, out *Extraction, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	body := n.ChildByFieldName("body")
	doc := pythonDocstring(body, source)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := "def " + name
	if params != nil {
		sig += extractNodeText(params, source)
	} else {
		sig += "()"
	}

	kind := chunk.KindFunction
	if parent != "" {
		kind = chunk.KindMethod
	}

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       kind,
		Signature:  sig,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		Parent:     parent,
	})

	walkTree(n, func(inner *sitter.Node) bool {
		if inner.Kind() == "call" {
			e.extractCall(inner, source, out)
		}
		return true
	})
}

// pythonDocstring returns the first statement of body if it is a bare
// string literal, Python's docstring convention.
func pythonDocstring(body *sitter.Node, source []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	expr := first.Child(0)
	if expr.Kind() != "string" {
		return ""
	}
	text := extractNodeText(expr, source)
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}

func (e *pythonExtractor) extractImport(n *sitter.Node, source []byte, out *Extraction) {
	spec := strings.TrimSpace(extractNodeText(n, source))
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: spec,
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *pythonExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: enclosingPythonFunctionName(n, source),
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

func enclosingPythonFunctionName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		if p.Kind() == "function_definition" {
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
