package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// cExtractor walks a C/C++ syntax tree. Adapted from cortex's
// internal/indexer/parsers/c.go: struct/union/enum/function extraction
// and the recursive findFunctionName declarator-unwrapping are kept,
// extended with docstring and call-site capture and full function bodies
// (the teacher kept signature-only definitions for functions).
type cExtractor struct {
	treeSitterBase
	language chunk.Language
}

// NewCExtractor returns an Extractor for C source.
func NewCExtractor() Extractor {
	lang := sitter.NewLanguage(c.Language())
	return &cExtractor{treeSitterBase: newTreeSitterBase(lang, "c"), language: chunk.LangC}
}

// NewCPPExtractor returns an Extractor for C++ source. C++ reuses the C
// grammar; the teacher repo has no dedicated C++ grammar dependency
// either, distinguishing the two only by file extension.
func NewCPPExtractor() Extractor {
	lang := sitter.NewLanguage(c.Language())
	return &cExtractor{treeSitterBase: newTreeSitterBase(lang, "cpp"), language: chunk.LangCPP}
}

func (e *cExtractor) Language() chunk.Language { return e.language }

var cCommentKinds = map[string]bool{"comment": true}

func stripCComment(s string) string {
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	s = strings.TrimPrefix(s, "//")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (e *cExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "c: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: e.language, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "preproc_include":
			e.extractInclude(n, source, out)
		case "struct_specifier":
			e.def(n, source, out, chunk.KindStruct)
		case "union_specifier":
			e.def(n, source, out, chunk.KindStruct)
		case "enum_specifier":
			e.def(n, source, out, chunk.KindEnum)
		case "function_definition":
			e.extractFunction(n, source, out)
			return false
		}
		return true
	})

	return out, nil
}

func (e *cExtractor) def(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, cCommentKinds, stripCComment)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       kind,
		Signature:  name,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
	})
}

func (e *cExtractor) extractFunction(n *sitter.Node, source []byte, out *Extraction) {
	declarator := n.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}
	name := findFunctionName(declarator, source)
	if name == "" {
		return
	}
	doc := leadingDocComment(n, source, cCommentKinds, stripCComment)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       chunk.KindFunction,
		Signature:  buildCSignature(n, source),
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
	})

	walkTree(n, func(inner *sitter.Node) bool {
		if inner.Kind() == "call_expression" {
			e.extractCall(inner, source, out, name)
		}
		return true
	})
}

// findFunctionName recursively unwraps pointer/function declarators to
// find the bare identifier, following the teacher's approach exactly.
func findFunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier":
		return extractNodeText(node, source)
	case "function_declarator", "pointer_declarator":
		return findFunctionName(node.ChildByFieldName("declarator"), source)
	default:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			if child.Kind() == "identifier" {
				return extractNodeText(child, source)
			}
		}
		return ""
	}
}

func buildCSignature(n *sitter.Node, source []byte) string {
	typeNode := n.ChildByFieldName("type")
	declarator := n.ChildByFieldName("declarator")
	sig := ""
	if typeNode != nil {
		sig += extractNodeText(typeNode, source) + " "
	}
	if declarator != nil {
		sig += extractNodeText(declarator, source)
	}
	return strings.TrimSpace(sig)
}

func (e *cExtractor) extractInclude(n *sitter.Node, source []byte, out *Extraction) {
	spec := strings.TrimSpace(strings.TrimPrefix(extractNodeText(n, source), "#include"))
	spec = strings.Trim(spec, "<>\"")
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: strings.TrimSpace(spec),
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *cExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction, caller string) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: caller,
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}
