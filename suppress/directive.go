package suppress

import (
	"strings"

	"github.com/thailint/thailint-core/model"
)

// Scope is the closed set of suppression scopes (spec §4.1/§4.3).
type Scope string

const (
	ScopeProject   Scope = "PROJECT"
	ScopeDirectory Scope = "DIRECTORY"
	ScopeHeader    Scope = "FILE_HEADER"
	ScopeBlock     Scope = "BLOCK"
	ScopeLine      Scope = "LINE"
)

// Directive is a single user-authored suppression, at one of the five
// scopes. RuleIDs is nil/empty to mean "every rule" (invariant ii).
type Directive struct {
	Scope         Scope
	RuleIDs       []string // lower-cased; empty means all
	FilePath      string
	StartLine     int
	EndLine       int
	Justification string // FILE_HEADER only
	used          bool
}

// Matches reports whether ruleID is covered by d, honouring the "empty
// list means all rules" invariant and prefix matching (e.g. "nesting"
// matches "nesting.excessive-depth").
func (d *Directive) Matches(ruleID string) bool {
	if len(d.RuleIDs) == 0 {
		return true
	}
	ruleID = strings.ToLower(ruleID)
	for _, id := range d.RuleIDs {
		if ruleID == id || strings.HasPrefix(ruleID, id+".") {
			return true
		}
	}
	return false
}

func (d *Directive) covers(line int) bool {
	return line >= d.StartLine && line <= d.EndLine
}

// dry sigil aliasing: the codebase has two spellings for the same
// suppression, `# dry: ignore-block` and `# thailint: ignore[dry]`
// (spec §9, resolved as equivalent rather than flagged as divergence).
const dryAliasSigil = "dry: ignore-block"

var commentSigils = map[model.Language][]string{
	model.LangPython:     {"#"},
	model.LangBash:       {"#"},
	model.LangTypeScript: {"//", "/*"},
	model.LangJavaScript: {"//", "/*"},
	model.LangCSS:        {"/*"},
	model.LangMarkdown:   {"<!--"},
}

func parseRuleList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
