package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// javaExtractor walks a Java syntax tree. Adapted from cortex's
// internal/indexer/parsers/java.go: the class/interface/enum/method
// traversal is kept, but methods now emit full bodies (the teacher kept
// signature-only definitions) plus docstring and call-site capture the
// teacher never recorded.
type javaExtractor struct {
	treeSitterBase
}

// NewJavaExtractor returns an Extractor for Java source.
func NewJavaExtractor() Extractor {
	lang := sitter.NewLanguage(java.Language())
	return &javaExtractor{treeSitterBase: newTreeSitterBase(lang, "java")}
}

func (e *javaExtractor) Language() chunk.Language { return chunk.LangJava }

var javaCommentKinds = map[string]bool{"line_comment": true, "block_comment": true}

func stripJavaDoc(s string) string {
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	s = strings.TrimPrefix(s, "//")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (e *javaExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "java: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangJava, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_declaration":
			e.extractImport(n, source, out)
			return false
		case "class_declaration":
			e.extractClassLike(n, source, out, chunk.KindClass)
			return false
		case "interface_declaration":
			e.extractClassLike(n, source, out, chunk.KindInterface)
			return false
		case "enum_declaration":
			e.def(n, source, out, chunk.KindEnum, "")
			return false
		case "method_invocation":
			e.extractCall(n, source, out)
		}
		return true
	})

	return out, nil
}

func (e *javaExtractor) def(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, javaCommentKinds, stripJavaDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       kind,
		Signature:  string(kind) + " " + name,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		Parent:     parent,
	})
}

func (e *javaExtractor) extractClassLike(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind) {
	e.def(n, source, out, kind, "")
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	className := extractNodeText(nameNode, source)

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "method_declaration" {
			e.extractMethod(child, source, out, className)
		}
	}
}

func (e *javaExtractor) extractMethod(n *sitter.Node, source []byte, out *Extraction, className string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	typeNode := n.ChildByFieldName("type")
	params := n.ChildByFieldName("parameters")
	doc := leadingDocComment(n, source, javaCommentKinds, stripJavaDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := className + "." + name
	if params != nil {
		sig += extractNodeText(params, source)
	} else {
		sig += "()"
	}
	if typeNode != nil {
		sig += ": " + extractNodeText(typeNode, source)
	}

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       chunk.KindMethod,
		Signature:  sig,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		Parent:     className,
	})

	walkTree(n, func(inner *sitter.Node) bool {
		if inner.Kind() == "method_invocation" {
			e.extractCall(inner, source, out)
		}
		return true
	})
}

func (e *javaExtractor) extractImport(n *sitter.Node, source []byte, out *Extraction) {
	spec := strings.TrimSpace(extractNodeText(n, source))
	spec = strings.TrimPrefix(spec, "import")
	spec = strings.TrimSuffix(strings.TrimSpace(spec), ";")
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: strings.TrimSpace(spec),
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *javaExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: enclosingJavaMethodName(n, source),
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

func enclosingJavaMethodName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		if p.Kind() == "method_declaration" {
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
