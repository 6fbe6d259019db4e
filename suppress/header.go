package suppress

import (
	"regexp"
	"strings"

	"github.com/thailint/thailint-core/model"
)

var headerEntryRe = regexp.MustCompile(`^\s*([A-Za-z0-9_.\-]+)\s*:\s*(.+?)\s*$`)

// scanHeaderDirectives finds the `Suppressions:` block inside the file's
// header (Python docstring, leading comment block for TS/JS/Bash/CSS, YAML
// frontmatter for Markdown) and turns each `<rule-id>: <justification>`
// line under it into a FILE_HEADER directive covering the whole file.
func scanHeaderDirectives(filePath string, lang model.Language, tree *model.ParseResult, text string) []*Directive {
	var headerLines []string
	var headerLineOffset int // 1-based line of headerLines[0]

	if lang == model.LangMarkdown && tree != nil && tree.Markdown != nil && tree.Markdown.HasFrontmatter {
		headerLines = strings.Split(tree.Markdown.Frontmatter, "\n")
		headerLineOffset = 2 // frontmatter body starts at line 2 (line 1 is the opening ---)
	} else {
		headerLines, headerLineOffset = leadingCommentBlock(lang, text)
	}

	return extractSuppressionsEntries(filePath, headerLines, headerLineOffset)
}

// leadingCommentBlock returns the consecutive comment (or docstring) lines
// at the very top of the file, skipping a shebang line if present.
func leadingCommentBlock(lang model.Language, text string) ([]string, int) {
	lines := strings.Split(text, "\n")
	i := 0
	if i < len(lines) && strings.HasPrefix(lines[i], "#!") {
		i++
	}
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return nil, 0
	}

	switch lang {
	case model.LangPython:
		return pythonDocstring(lines, i)
	default:
		return blockCommentOrLineRun(lines, i)
	}
}

func pythonDocstring(lines []string, start int) ([]string, int) {
	first := strings.TrimSpace(lines[start])
	var quote string
	switch {
	case strings.HasPrefix(first, `"""`):
		quote = `"""`
	case strings.HasPrefix(first, "'''"):
		quote = "'''"
	default:
		return nil, 0
	}

	body := strings.TrimPrefix(first, quote)
	if end := strings.Index(body, quote); end >= 0 {
		return []string{body[:end]}, start + 1
	}

	var out []string
	out = append(out, body)
	for i := start + 1; i < len(lines); i++ {
		if end := strings.Index(lines[i], quote); end >= 0 {
			out = append(out, lines[i][:end])
			return out, start + 1
		}
		out = append(out, lines[i])
	}
	return out, start + 1
}

func blockCommentOrLineRun(lines []string, start int) ([]string, int) {
	first := strings.TrimSpace(lines[start])

	if strings.HasPrefix(first, "/*") {
		body := strings.TrimPrefix(first, "/*")
		if end := strings.Index(body, "*/"); end >= 0 {
			return []string{body[:end]}, start + 1
		}
		var out []string
		out = append(out, body)
		for i := start + 1; i < len(lines); i++ {
			if end := strings.Index(lines[i], "*/"); end >= 0 {
				out = append(out, lines[i][:end])
				return out, start + 1
			}
			out = append(out, lines[i])
		}
		return out, start + 1
	}

	if !strings.HasPrefix(first, "#") && !strings.HasPrefix(first, "//") && !strings.HasPrefix(first, "<!--") {
		return nil, 0
	}

	var out []string
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(trimmed, "#") {
			out = append(out, strings.TrimPrefix(trimmed, "#"))
		} else if strings.HasPrefix(trimmed, "//") {
			out = append(out, strings.TrimPrefix(trimmed, "//"))
		} else if strings.HasPrefix(trimmed, "<!--") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(trimmed, "<!--"), "-->"))
		} else {
			break
		}
	}
	return out, start + 1
}

func extractSuppressionsEntries(filePath string, headerLines []string, lineOffset int) []*Directive {
	var directives []*Directive
	inBlock := false
	baseIndent := -1

	for i, raw := range headerLines {
		trimmed := strings.TrimSpace(raw)
		if !inBlock {
			if strings.EqualFold(trimmed, "Suppressions:") {
				inBlock = true
			}
			continue
		}

		if trimmed == "" {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		if baseIndent == -1 {
			baseIndent = indent
		}
		if indent < baseIndent {
			break
		}

		m := headerEntryRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		ruleID := strings.ToLower(m[1])
		justification := m[2]
		if justification == "" {
			continue
		}

		directives = append(directives, &Directive{
			Scope:         ScopeHeader,
			RuleIDs:       []string{ruleID},
			FilePath:      filePath,
			StartLine:     lineOffset + i,
			EndLine:       1 << 30, // entire file
			Justification: justification,
		})
	}

	return directives
}
