package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterBase holds the parsed tree-sitter language and is embedded by
// every concrete language extractor, following the shared-harness pattern
// used across cortex's per-language parsers.
type treeSitterBase struct {
	language *sitter.Language
	lang     string
}

func newTreeSitterBase(language *sitter.Language, lang string) treeSitterBase {
	return treeSitterBase{language: language, lang: lang}
}

// parse runs the grammar over source, returning nil if the parser itself
// could not produce a tree (never for ordinary syntax errors, which
// tree-sitter recovers from internally and reports via error nodes).
func (b treeSitterBase) parse(source []byte) *sitter.Tree {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(b.language)
	return parser.Parse(source, nil)
}

// extractNodeText returns the verbatim source text spanned by node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// lineRangeOf converts a node's tree-sitter position (0-indexed row) into a
// 1-indexed, half-open chunk.Range.
func lineRangeOf(node *sitter.Node) (start, end int) {
	return int(node.StartPosition().Row) + 1, int(node.EndPosition().Row) + 2
}

func byteRangeOf(node *sitter.Node) (start, end int) {
	return int(node.StartByte()), int(node.EndByte())
}

// walkTree performs a panic-safe depth-first walk. visit returns false to
// skip descending into a node's children (used for impl/class bodies
// whose methods are handled by a dedicated visitor). A panic raised while
// visiting one node is recovered at that node's boundary: the rest of the
// tree is still walked, matching spec.md §4.1's failure semantics ("An
// extractor that panics on a single node must be caught at node boundary
// — the rest of the file proceeds").
func walkTree(node *sitter.Node, visit func(n *sitter.Node) bool) {
	if node == nil {
		return
	}
	descend := safeVisit(node, visit)
	if !descend {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visit)
	}
}

func safeVisit(node *sitter.Node, visit func(n *sitter.Node) bool) (descend bool) {
	descend = true
	defer func() {
		if r := recover(); r != nil {
			descend = true
		}
	}()
	return visit(node)
}

// leadingDocComment walks backward from node's preceding siblings,
// collecting contiguous comment nodes of the given kinds immediately
// above the definition (no blank line between them), and returns their
// joined, stripped text.
func leadingDocComment(node *sitter.Node, source []byte, commentKinds map[string]bool, strip func(string) string) string {
	var comments []string
	prevEndRow := int(node.StartPosition().Row)
	sib := node.PrevSibling()
	for sib != nil && commentKinds[sib.Kind()] {
		startRow := int(sib.StartPosition().Row)
		endRow := int(sib.EndPosition().Row)
		if prevEndRow-endRow > 1 {
			break
		}
		comments = append([]string{strip(extractNodeText(sib, source))}, comments...)
		prevEndRow = startRow
		sib = sib.PrevSibling()
	}
	return strings.TrimSpace(strings.Join(comments, "\n"))
}
