package extract

import (
	"context"
	"strconv"
	"strings"

	"github.com/mvp-joe/codemate/internal/chunk"
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// goExtractor is the new extractor this expansion adds: spec.md §3 names
// the "go:<package>.<symbol>" FQN convention, but the retrieved teacher
// repo (itself written in Go) never extracts its own language. The
// grammar binding is the natural sibling of tree-sitter/go-tree-sitter,
// already a dependency for every other language here.
type goExtractor struct {
	treeSitterBase
}

// NewGoExtractor returns an Extractor for Go source.
func NewGoExtractor() Extractor {
	lang := sitter.NewLanguage(golang.Language())
	return &goExtractor{treeSitterBase: newTreeSitterBase(lang, "go")}
}

func (e *goExtractor) Language() chunk.Language { return chunk.LangGo }

func (e *goExtractor) Extract(ctx context.Context, path string, source []byte) (*Extraction, error) {
	tree := e.parse(source)
	if tree == nil {
		return nil, ParseError{Path: path, Message: "go: parser produced no tree"}
	}
	defer tree.Close()

	out := &Extraction{Language: chunk.LangGo, FilePath: path}
	root := tree.RootNode()

	pkgName := e.packageName(root, source)

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_declaration":
			e.extractImports(n, source, out)
			return false
		case "function_declaration":
			e.extractFunction(n, source, out, pkgName, "")
			return true
		case "method_declaration":
			e.extractMethod(n, source, out, pkgName)
			return true
		case "type_declaration":
			e.extractTypeDecl(n, source, out, pkgName)
			return true
		case "const_declaration", "var_declaration":
			// constants/vars are not split into chunks by spec.md's kind
			// list beyond "constant"; top-level const blocks become
			// constant-kind definitions.
			e.extractConstOrVar(n, source, out, pkgName)
			return false
		case "call_expression":
			e.extractCall(n, source, out)
			return true
		}
		return true
	})

	return out, nil
}

func (e *goExtractor) packageName(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		if child.Kind() == "package_clause" {
			id := child.ChildByFieldName("name")
			return extractNodeText(id, source)
		}
	}
	return ""
}

var goCommentKinds = map[string]bool{"comment": true}

func stripGoComment(s string) string {
	s = strings.TrimPrefix(s, "//")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

func (e *goExtractor) extractFunction(n *sitter.Node, source []byte, out *Extraction, pkg, parent string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	doc := leadingDocComment(n, source, goCommentKinds, stripGoComment)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)
	signature := e.signature(n, source)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       chunk.KindFunction,
		Signature:  signature,
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		Parent:     parent,
	})
}

func (e *goExtractor) extractMethod(n *sitter.Node, source []byte, out *Extraction, pkg string) {
	nameNode := n.ChildByFieldName("name")
	recv := n.ChildByFieldName("receiver")
	if nameNode == nil {
		return
	}
	name := extractNodeText(nameNode, source)
	recvType := ""
	if recv != nil {
		recvType = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(extractNodeText(recv, source)), "("), ")")
	}
	doc := leadingDocComment(n, source, goCommentKinds, stripGoComment)
	lineStart, lineEnd := lineRangeOf(n)
	byteStart, byteEnd := byteRangeOf(n)

	out.Definitions = append(out.Definitions, Definition{
		SymbolName: name,
		Kind:       chunk.KindMethod,
		Signature:  e.signature(n, source),
		Docstring:  doc,
		Content:    extractNodeText(n, source),
		ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
		LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		Parent:     receiverTypeName(recvType),
	})
}

// receiverTypeName strips a leading "*" and the parameter name from a Go
// method receiver, e.g. "s *Server" -> "Server".
func receiverTypeName(recv string) string {
	recv = strings.TrimSpace(recv)
	fields := strings.Fields(recv)
	if len(fields) == 0 {
		return ""
	}
	t := fields[len(fields)-1]
	return strings.TrimPrefix(t, "*")
}

func (e *goExtractor) signature(n *sitter.Node, source []byte) string {
	nameNode := n.ChildByFieldName("name")
	params := n.ChildByFieldName("parameters")
	result := n.ChildByFieldName("result")

	sig := extractNodeText(nameNode, source)
	if params != nil {
		sig += extractNodeText(params, source)
	}
	if result != nil {
		sig += " " + extractNodeText(result, source)
	}
	return sig
}

func (e *goExtractor) extractTypeDecl(n *sitter.Node, source []byte, out *Extraction, pkg string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		spec := n.Child(uint(i))
		if spec.Kind() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		name := extractNodeText(nameNode, source)
		kind := chunk.KindTypeAlias
		switch typeNode.Kind() {
		case "struct_type":
			kind = chunk.KindStruct
		case "interface_type":
			kind = chunk.KindInterface
		}
		doc := leadingDocComment(n, source, goCommentKinds, stripGoComment)
		lineStart, lineEnd := lineRangeOf(n)
		byteStart, byteEnd := byteRangeOf(n)

		out.Definitions = append(out.Definitions, Definition{
			SymbolName: name,
			Kind:       kind,
			Signature:  "type " + name + " " + typeNode.Kind(),
			Docstring:  doc,
			Content:    extractNodeText(n, source),
			ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
			LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		})
	}
}

func (e *goExtractor) extractConstOrVar(n *sitter.Node, source []byte, out *Extraction, pkg string) {
	kindName := "const"
	if n.Kind() == "var_declaration" {
		kindName = "var"
	}
	walkTree(n, func(child *sitter.Node) bool {
		if child.Kind() != "const_spec" && child.Kind() != "var_spec" {
			return true
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			return true
		}
		lineStart, lineEnd := lineRangeOf(child)
		byteStart, byteEnd := byteRangeOf(child)
		out.Definitions = append(out.Definitions, Definition{
			SymbolName: extractNodeText(nameNode, source),
			Kind:       chunk.KindConstant,
			Signature:  kindName + " " + extractNodeText(nameNode, source),
			Content:    extractNodeText(child, source),
			ByteRange:  chunk.Range{Start: byteStart, End: byteEnd},
			LineRange:  chunk.Range{Start: lineStart, End: lineEnd},
		})
		return true
	})
}

func (e *goExtractor) extractImports(n *sitter.Node, source []byte, out *Extraction) {
	walkTree(n, func(child *sitter.Node) bool {
		if child.Kind() != "import_spec" {
			return true
		}
		pathNode := child.ChildByFieldName("path")
		if pathNode == nil {
			return true
		}
		spec, err := strconv.Unquote(extractNodeText(pathNode, source))
		if err != nil {
			spec = extractNodeText(pathNode, source)
		}
		out.Imports = append(out.Imports, ImportRecord{
			Specifier: spec,
			Line:      int(child.StartPosition().Row) + 1,
		})
		return true
	})
}

func (e *goExtractor) extractCall(n *sitter.Node, source []byte, out *Extraction) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := extractNodeText(fn, source)
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	caller := enclosingFunctionName(n, source)
	out.Calls = append(out.Calls, CallSite{
		CallerSymbol: caller,
		Callee:       name,
		Line:         int(n.StartPosition().Row) + 1,
	})
}

// enclosingFunctionName walks up from n to find the nearest enclosing
// function_declaration or method_declaration and returns its name, or ""
// if the call is at file (top) level.
func enclosingFunctionName(n *sitter.Node, source []byte) string {
	p := n.Parent()
	for p != nil {
		if p.Kind() == "function_declaration" || p.Kind() == "method_declaration" {
			nameNode := p.ChildByFieldName("name")
			return extractNodeText(nameNode, source)
		}
		p = p.Parent()
	}
	return ""
}
