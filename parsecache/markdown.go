package parsecache

import (
	"strings"

	"github.com/thailint/thailint-core/model"
)

// parseMarkdown splits src into an optional YAML frontmatter block (fenced
// by a line of exactly "---" at the very start of the file and the next
// such line) and the prose body that follows.
func parseMarkdown(src []byte) *model.MarkdownDoc {
	text := string(src)
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return &model.MarkdownDoc{Body: text, BodyStartLine: 1}
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			frontmatter := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return &model.MarkdownDoc{
				HasFrontmatter: true,
				Frontmatter:    frontmatter,
				FrontmatterEnd: i + 1,
				Body:           body,
				BodyStartLine:  i + 2,
			}
		}
	}

	// Unterminated fence: treat the whole file as body, no frontmatter.
	return &model.MarkdownDoc{Body: text, BodyStartLine: 1}
}
