package parsecache

import (
	"regexp"
	"strings"

	"github.com/thailint/thailint-core/model"
)

// Bash and CSS have no tree-sitter grammar wired into this core (spec §4.2
// is explicit: these two are handled by regex scanning, not a parser), so
// the "parse" step for them is a best-effort lexical pass good enough for
// the suppression engine (needs comments) and the DRY rule (needs a token
// stream).

var (
	bashCommentRe = regexp.MustCompile(`#.*$`)
	bashTokenRe   = regexp.MustCompile(`"[^"]*"|'[^']*'|\$\{?\w+\}?|[A-Za-z_][A-Za-z0-9_]*|[0-9]+(\.[0-9]+)?|[(){}\[\];|&<>=!+\-*/%]`)

	cssCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssTokenRe   = regexp.MustCompile(`"[^"]*"|'[^']*'|[#.@]?[A-Za-z_-][A-Za-z0-9_-]*|[0-9]+(\.[0-9]+)?%?|[{}:;,()]`)

	bashKeywords = set("if", "then", "else", "elif", "fi", "for", "while", "until", "do", "done", "case", "esac", "function", "in", "return")
	cssKeywords  = set("important", "media", "keyframes", "supports", "import", "charset")
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func scanTokens(lang model.Language, src []byte) *model.ScanResult {
	switch lang {
	case model.LangBash:
		return scanWith(src, bashCommentRe, bashTokenRe, bashKeywords)
	case model.LangCSS:
		return scanWith(src, cssCommentRe, cssTokenRe, cssKeywords)
	default:
		return &model.ScanResult{}
	}
}

func scanWith(src []byte, commentRe, tokenRe *regexp.Regexp, keywords map[string]bool) *model.ScanResult {
	result := &model.ScanResult{}
	lines := strings.Split(string(src), "\n")

	for i, line := range lines {
		lineNo := i + 1
		if loc := commentRe.FindStringIndex(line); loc != nil {
			result.Comments = append(result.Comments, model.ScannedComment{
				Text:      line[loc[0]:loc[1]],
				StartLine: lineNo,
				EndLine:   lineNo,
			})
			line = line[:loc[0]]
		}

		for _, tok := range tokenRe.FindAllString(line, -1) {
			kind := classify(tok, keywords)
			result.Tokens = append(result.Tokens, model.ScanToken{Kind: kind, Value: tok, Line: lineNo})
		}
	}

	return result
}

func classify(tok string, keywords map[string]bool) string {
	switch {
	case keywords[tok]:
		return "keyword"
	case strings.HasPrefix(tok, `"`) || strings.HasPrefix(tok, "'"):
		return "literal"
	case isIdentStart(tok):
		return "ident"
	case isNumeric(tok):
		return "literal"
	default:
		return "op"
	}
}

func isIdentStart(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '_' || c == '$' || c == '#' || c == '.' || c == '@' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c >= '0' && c <= '9'
}
