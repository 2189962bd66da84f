package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// phpExtractor walks a PHP syntax tree. Adapted from cortex's
// internal/indexer/parsers/php.go: class/interface/trait/function
// traversal is kept, extended with docstring and call-site capture.
type phpExtractor struct {
	treeSitterBase
}

// NewPHPExtractor returns an Extractor for PHP source.
func NewPHPExtractor() Extractor {
	lang := sitter.NewLanguage(php.LanguagePHP())
	return &phpExtractor{treeSitterBase: newTreeSitterBase(lang, "php")}
}

func (e *phpExtractor) Language() chunk.Language { return chunk.LangPHP }

var phpCommentKinds = map[string]bool{"comment": true}

func stripPHPDoc(s string) string {
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

func (e *phpExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "php: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangPHP, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "namespace_use_declaration":
			e.extractImport(n, source, out)
			return false
		case "class_declaration":
			e.extractClassLike(n, source, out, chunk.KindClass)
			return false
		case "interface_declaration":
			e.extractClassLike(n, source, out, chunk.KindInterface)
			return false
		case "trait_declaration":
			e.extractClassLike(n, source, out, chunk.KindClass)
			return false
		case "function_definition":
			e.extractFunction(n, source, out, "")
			return false
		}
		return true
	})

	return out, nil
}

func (e *phpExtractor) extractClassLike(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, phpCommentKinds, stripPHPDoc)
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
	})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "method_declaration" {
			e.extractFunction(child, source, out, name)
		}
	}
}

func (e *phpExtractor) extractFunction(n *sitter.Node, source []byte, out *Extraction, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	doc := leadingDocComment(n, source, phpCommentKinds, stripPHPDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := "function " + name
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
		if inner.Kind() == "function_call_expression" || inner.Kind() == "member_call_expression" {
			e.extractCall(inner, source, out, name)
		}
		return true
	})
}

func (e *phpExtractor) extractImport(n *sitter.Node, source []byte, out *Extraction) {
	spec := strings.TrimSpace(extractNodeText(n, source))
	spec = strings.TrimPrefix(spec, "use")
	spec = strings.TrimSuffix(strings.TrimSpace(spec), ";")
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: strings.TrimSpace(spec),
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *phpExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction, caller string) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		fn = n.ChildByFieldName("name")
	}
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	if idx := strings.LastIndex(name, "->"); idx >= 0 {
		name = name[idx+2:]
	}
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: caller,
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}
