package suppress

import (
	"regexp"
	"strings"

	"github.com/thailint/thailint-core/model"
)

// ignoreRe matches `thailint: ignore[rules]`, `thailint: ignore-start[rules]`
// and `thailint: ignore-end`, regardless of which comment sigil precedes it
// (the sigil table in directive.go only documents which families are
// recognised per spec §4.3; matching itself is sigil-agnostic, same as the
// teacher's per-tool patterns in its suppression parser, which match the
// directive body without re-deriving the comment grammar).
var ignoreRe = regexp.MustCompile(`(?i)thailint:\s*ignore(-start|-end)?(?:\[([^\]]*)\])?`)

var dryAliasRe = regexp.MustCompile(`(?i)dry:\s*ignore-block`)

// scanLineAndBlockDirectives walks text line by line and produces LINE and
// BLOCK directives. Each ignore-end closes the most recent still-open
// ignore-start, whatever rules that start named; an
// unterminated start extends to end of file (best effort, never an error —
// the suppression engine must not fail a run over a malformed comment).
func scanLineAndBlockDirectives(filePath string, lang model.Language, text string) []*Directive {
	var directives []*Directive
	var openStarts []*Directive

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1

		if dryAliasRe.MatchString(line) {
			directives = append(directives, &Directive{
				Scope: ScopeLine, RuleIDs: []string{"dry"},
				FilePath: filePath, StartLine: lineNo, EndLine: lineNo,
			})
			continue
		}

		m := ignoreRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		kind := m[1] // "", "-start", "-end"
		ruleIDs := parseRuleList(m[2])

		switch kind {
		case "-start":
			d := &Directive{Scope: ScopeBlock, RuleIDs: ruleIDs, FilePath: filePath, StartLine: lineNo, EndLine: lineNo}
			openStarts = append(openStarts, d)
			directives = append(directives, d)
		case "-end":
			if n := len(openStarts); n > 0 {
				d := openStarts[n-1]
				openStarts = openStarts[:n-1]
				d.EndLine = lineNo
			}
		default:
			directives = append(directives, &Directive{
				Scope: ScopeLine, RuleIDs: ruleIDs,
				FilePath: filePath, StartLine: lineNo, EndLine: lineNo,
			})
		}
	}

	for _, d := range openStarts {
		d.EndLine = len(lines)
	}

	return directives
}
