package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// rustExtractor walks a Rust syntax tree. Adapted from cortex's
// internal/indexer/parsers/rust.go: the struct/enum/trait/impl/function
// traversal is kept, generalised to emit extract.Definition (with
// signature + docstring) instead of the old three-tier
// Symbols/Definitions/Data split, and extended with call-site and
// use-declaration capture (the teacher only counted imports, it never
// recorded their specifiers or any call site).
type rustExtractor struct {
	treeSitterBase
}

// NewRustExtractor returns an Extractor for Rust source.
func NewRustExtractor() Extractor {
	lang := sitter.NewLanguage(rust.Language())
	return &rustExtractor{treeSitterBase: newTreeSitterBase(lang, "rust")}
}

func (e *rustExtractor) Language() chunk.Language { return chunk.LangRust }

var rustCommentKinds = map[string]bool{"line_comment": true, "block_comment": true}

func stripRustDoc(s string) string {
	s = strings.TrimPrefix(s, "///")
	s = strings.TrimPrefix(s, "//!")
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimSpace(s)
	return s
}

func (e *rustExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "rust: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangRust, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "use_declaration":
			e.extractUse(n, source, out)
			return false
		case "struct_item":
			e.def(n, source, out, chunk.KindStruct, "")
		case "enum_item":
			e.def(n, source, out, chunk.KindEnum, "")
		case "trait_item":
			e.def(n, source, out, chunk.KindInterface, "")
		case "impl_item":
			e.extractImpl(n, source, out)
			return false
		case "function_item":
			e.def(n, source, out, chunk.KindFunction, "")
		case "const_item", "static_item":
			e.def(n, source, out, chunk.KindConstant, "")
		case "call_expression":
			e.extractCall(n, source, out)
		}
		return true
	})

	return out, nil
}

func (e *rustExtractor) def(n *sitter.Node, source []byte, out *Extraction, kind chunk.Kind, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, rustCommentKinds, stripRustDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := name
	if kind == chunk.KindFunction {
		sig = e.functionSignature(n, source, parent)
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
}

func (e *rustExtractor) functionSignature(n *sitter.Node, source []byte, typeName string) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := extractNodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	ret := n.ChildByFieldName("return_type")

	sig := ""
	if typeName != "" {
		sig = typeName + "::"
	}
	sig += name
	if params != nil {
		sig += extractNodeText(params, source)
	} else {
		sig += "()"
	}
	if ret != nil {
		sig += " -> " + extractNodeText(ret, source)
	}
	return sig
}

func (e *rustExtractor) extractImpl(n *sitter.Node, source []byte, out *Extraction) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	typeName := extractNodeText(typeNode, source)

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "function_item" {
			e.def(child, source, out, chunk.KindMethod, typeName)
			walkTree(child, func(inner *sitter.Node) bool {
				if inner.Kind() == "call_expression" {
					e.extractCall(inner, source, out)
				}
				return true
			})
		}
	}
}

func (e *rustExtractor) extractUse(n *sitter.Node, source []byte, out *Extraction) {
	argNode := n.ChildByFieldName("argument")
	if argNode == nil {
		argNode = n
	}
	spec := extractNodeText(argNode, source)
	spec = strings.TrimSuffix(strings.TrimSpace(spec), ";")
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: spec,
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *rustExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	} else if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: enclosingRustFunctionName(n, source),
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

func enclosingRustFunctionName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		if p.Kind() == "function_item" {
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
