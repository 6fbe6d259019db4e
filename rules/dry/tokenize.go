package dry

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/thailint/thailint-core/model"
)

// token is one normalised lexical unit: an identifier collapses to "ID",
// a numeric/string literal collapses to "LIT", everything else (operators,
// keywords) is kept verbatim — spec §4.7 step 1's normalisation, making
// the k-gram comparison structural rather than textual.
type token struct {
	norm string
	line int
}

// tokenize produces the normalised token stream for ctx, or nil if the
// file failed to parse or ctx's language has no tokeniser wired into this
// rule (spec §4.7: "files in languages without a tokeniser ... are
// skipped by this rule only").
func tokenize(ctx *model.FileContext) []token {
	if ctx.Tree == nil || !ctx.Tree.OK {
		return nil
	}
	switch ctx.Language {
	case model.LangPython, model.LangTypeScript, model.LangJavaScript:
		if ctx.Tree.Sitter == nil {
			return nil
		}
		return tokenizeSitter(ctx.Tree.Sitter.RootNode(), ctx.Bytes)
	case model.LangBash, model.LangCSS:
		if ctx.Tree.Scan == nil {
			return nil
		}
		return tokenizeScan(ctx.Tree.Scan)
	default:
		return nil
	}
}

func tokenizeSitter(root *sitter.Node, src []byte) []token {
	var out []token
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.ChildCount() == 0 {
			if tok, ok := normalizeLeaf(n, src); ok {
				out = append(out, tok)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

// normalizeLeaf classifies one tree-sitter leaf node. Decorator calls
// (`@foo(bar)` above a Python def/class) are not special-cased: their
// tokens reach this function exactly like an ordinary call's tokens, the
// decorator-normalisation policy spec §9 asks implementers to pick and
// document (see SPEC_FULL.md's SUPPLEMENTED FEATURES section).
func normalizeLeaf(n *sitter.Node, src []byte) (token, bool) {
	kind := n.Type()
	line := int(n.StartPoint().Row) + 1
	text := n.Content(src)
	if strings.TrimSpace(text) == "" {
		return token{}, false
	}
	switch {
	case strings.Contains(kind, "comment"):
		return token{}, false
	case isIdentifierKind(kind):
		return token{norm: "ID", line: line}, true
	case isLiteralKind(kind, text):
		return token{norm: "LIT", line: line}, true
	default:
		return token{norm: text, line: line}, true
	}
}

func isIdentifierKind(kind string) bool {
	return strings.Contains(kind, "identifier")
}

func isLiteralKind(kind, text string) bool {
	switch kind {
	case "integer", "float", "number", "string", "string_fragment", "concatenated_string",
		"true", "false", "none", "null", "undefined":
		return true
	}
	if text[0] == '"' || text[0] == '\'' || text[0] == '`' {
		return true
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return true
	}
	return false
}

// tokenizeScan adapts the regex-driven scanner's output (Bash, CSS) to
// the same normalised token stream the sitter path produces.
func tokenizeScan(scan *model.ScanResult) []token {
	out := make([]token, 0, len(scan.Tokens))
	for _, t := range scan.Tokens {
		switch t.Kind {
		case "ident":
			out = append(out, token{norm: "ID", line: t.Line})
		case "literal":
			out = append(out, token{norm: "LIT", line: t.Line})
		default:
			out = append(out, token{norm: t.Value, line: t.Line})
		}
	}
	return out
}
