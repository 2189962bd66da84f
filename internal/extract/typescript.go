package extract

import (
	"context"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typeScriptExtractor walks a TypeScript syntax tree. Adapted from
// cortex's internal/indexer/parsers/typescript.go, extended with JSDoc
// docstring capture, export-aware FQN-friendly symbol naming, and
// call-site/import-specifier capture.
type typeScriptExtractor struct {
	treeSitterBase
	moduleFromPath func(path string) string
}

// NewTypeScriptExtractor returns an Extractor for TypeScript/TSX source.
func NewTypeScriptExtractor() Extractor {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return &typeScriptExtractor{treeSitterBase: newTreeSitterBase(lang, "typescript")}
}

func (e *typeScriptExtractor) Language() chunk.Language { return chunk.LangTypeScript }

var jsCommentKinds = map[string]bool{"comment": true}

func stripJSDoc(s string) string {
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "*"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (e *typeScriptExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "typescript: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangTypeScript, FilePath: path}
	root := tree.RootNode()

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			e.extractImport(n, source, out)
			return false
		case "class_declaration":
			e.extractClass(n, source, out)
			return false
		case "function_declaration":
			e.extractFunction(n, source, out, "")
		case "call_expression":
			e.extractCall(n, source, out)
		}
		return true
	})

	return out, nil
}

func (e *typeScriptExtractor) extractClass(n *sitter.Node, source []byte, out *Extraction) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, jsCommentKinds, stripJSDoc)
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

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "method_definition" {
			e.extractFunction(child, source, out, name)
		}
	}
}

func (e *typeScriptExtractor) extractFunction(n *sitter.Node, source []byte, out *Extraction, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	params := n.ChildByFieldName("parameters")
	returnType := n.ChildByFieldName("return_type")
	doc := leadingDocComment(n, source, jsCommentKinds, stripJSDoc)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	sig := name
	if params != nil {
		sig += extractNodeText(params, source)
	} else {
		sig += "()"
	}
	if returnType != nil {
		sig += extractNodeText(returnType, source)
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
		if inner.Kind() == "call_expression" {
			e.extractCall(inner, source, out)
		}
		return true
	})
}

func (e *typeScriptExtractor) extractImport(n *sitter.Node, source []byte, out *Extraction) {
	sourceNode := n.ChildByFieldName("source")
	spec := extractNodeText(sourceNode, source)
	spec = strings.Trim(spec, `"'`)
	out.Imports = append(out.Imports, ImportRecord{
		Specifier: spec,
		Line:      int(n.StartPosition().Row) + 1,
	})
}

func (e *typeScriptExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: enclosingTSFunctionName(n, source),
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

func enclosingTSFunctionName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		switch p.Kind() {
		case "function_declaration", "method_definition":
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
