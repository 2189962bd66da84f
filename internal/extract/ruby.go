package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// rubyExtractor walks a Ruby syntax tree. Adapted from cortex's
// internal/indexer/parsers/ruby.go: the class/module/method traversal and
// isTopLevel check are kept. The teacher's require counting admitted it
// was "simplified" and never accurate; this extractor instead recognises
// literal `require`/`require_relative` calls by name, and adds docstring
// and call-site capture the teacher never recorded.
type rubyExtractor struct {
	treeSitterBase
}

// NewRubyExtractor returns an Extractor for Ruby source.
func NewRubyExtractor() Extractor {
	lang := sitter.NewLanguage(ruby.Language())
	return &rubyExtractor{treeSitterBase: newTreeSitterBase(lang, "ruby")}
}

func (e *rubyExtractor) Language() chunk.Language { return chunk.LangRuby }

var rubyCommentKinds = map[string]bool{"comment": true}

func stripRubyDoc(s string) string {
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

func (e *rubyExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "ruby: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangRuby, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class":
			e.extractClassLike(n, source, out, chunk.KindClass)
			return false
		case "module":
			e.extractClassLike(n, source, out, chunk.KindModule)
			return false
		case "method":
			if rubyIsTopLevel(n) {
				e.extractMethod(n, source, out, "")
			}
		case "call":
			e.extractCallOrRequire(n, source, out)
		}
		return true
	})

	return out, nil
}

func rubyIsTopLevel(node *sitter.Node) bool {
	p := node.Parent()
	for p != nil {
		switch p.Kind() {
		case "class", "module", "method":
			return false
		case "program":
			return true
		}
		p = p.Parent()
	}
	return true
}

func (e *rubyExtractor) extractClassLike(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, rubyCommentKinds, stripRubyDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	keyword := "class"
	if kind == chunk.KindModule {
		keyword = "module"
	}

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       kind,
		Signature:  keyword + " " + name,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
	})

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		if child.Kind() == "method" {
			e.extractMethod(child, source, out, name)
		}
	}
}

func (e *rubyExtractor) extractMethod(n *sitter.Node, source []byte, out *Extraction, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	doc := leadingDocComment(n, source, rubyCommentKinds, stripRubyDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := "def " + name
	if params != nil {
		sig += extractNodeText(params, source)
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
			e.extractCallOrRequire(inner, source, out)
		}
		return true
	})
}

func (e *rubyExtractor) extractCallOrRequire(n *sitter.Node, source []byte, out *Extraction) {
	methodNode := n.ChildByFieldName("method")
	if methodNode == nil {
		return
	}
	name := extractNodeText(methodNode, source)

	if name == "require" || name == "require_relative" {
		args := n.ChildByFieldName("arguments")
		spec := ""
		if args != nil {
			spec = strings.Trim(extractNodeText(args, source), "() \t\"'")
		}
		out.Imports = append(out.Imports, ImportRecord{
			Specifier: spec,
			Line:      int(n.StartPosition().Row) + 1,
		})
		return
	}

	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: enclosingRubyMethodName(n, source),
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

func enclosingRubyMethodName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		if p.Kind() == "method" {
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
