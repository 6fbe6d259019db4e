// Package model defines the value types shared across the linter core:
// severities, violations, and the per-file context rules observe.
package model

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// Severity is the closed set of violation severities. Every violation is
// ERROR by default; a rule may downgrade to WARNING only where its own
// spec says so.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Valid reports whether s is one of the closed set of severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning:
		return true
	default:
		return false
	}
}

// Language is the closed set of language tags the engine understands.
// "other" receives no rule invocations.
type Language string

const (
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangBash       Language = "bash"
	LangMarkdown   Language = "markdown"
	LangCSS        Language = "css"
	LangOther      Language = "other"
)

// Violation is an immutable problem report. Two violations are equal iff
// every field below is equal; the engine (not the rule) is responsible for
// never emitting duplicates.
type Violation struct {
	RuleID     string
	FilePath   string // canonicalised absolute path
	Line       int    // 1-based
	Column     int    // 1-based; 0 permitted only for whole-line findings
	Message    string // single sentence, no trailing period
	Suggestion string // optional remediation, human readable
	Severity   Severity
}

// Key returns the tuple used for equality/deduplication and for the
// reporting sort order (file, line, column, rule id).
func (v Violation) Key() string {
	return fmt.Sprintf("%s\x00%06d\x00%06d\x00%s", v.FilePath, v.Line, v.Column, v.RuleID)
}

// FileContext is the per-file value a rule observes. It is shared
// read-only across every rule invoked for the same file; a rule that
// mutates it is in error.
type FileContext struct {
	Path         string   // canonical absolute path
	RelPath      string   // relative to the project root
	Bytes        []byte   // raw file bytes
	Text         string   // UTF-8 decoded, replacement chars on invalid sequences
	Language     Language
	ContentHash  string // hex-encoded sha256 of Bytes
	Tree         *ParseResult
	RuleConfig   func(ruleID string) any // resolved per-rule, per-language config
}

// ParseResult is the parse cache's per-(content-hash,language) value: a
// successful tree, or a recorded failure. Parse failure is a value, never
// an exception — rules ask ParseResult.OK before walking.
//
// Exactly one of Sitter, Scan or Markdown is populated, depending on
// Language: Python/TypeScript/JavaScript get a tree-sitter Sitter tree,
// Bash/CSS get a regex-driven Scan, Markdown gets a frontmatter+body split.
type ParseResult struct {
	OK       bool
	Err      error
	Language Language

	Sitter   *sitter.Tree // python, typescript, javascript
	Scan     *ScanResult  // bash, css
	Markdown *MarkdownDoc // markdown
}

// ScanResult is the output of the regex-driven scanner used for languages
// without a tree-sitter grammar in this core (Bash, CSS): a flat list of
// recognised comments plus a token stream good enough for DRY/suppression.
type ScanResult struct {
	Comments []ScannedComment
	Tokens   []ScanToken
}

// ScannedComment is one recognised comment span, used by the suppression
// engine to find directive sigils.
type ScannedComment struct {
	Text      string
	StartLine int
	EndLine   int
}

// ScanToken is one lexical token produced by the regex scanner, used by the
// DRY tokenizer for languages without a grammar.
type ScanToken struct {
	Kind  string // "ident", "literal", "op", "keyword"
	Value string
	Line  int
}

// MarkdownDoc is the parsed representation of a Markdown file: an optional
// YAML frontmatter block and the prose body that follows it.
type MarkdownDoc struct {
	HasFrontmatter bool
	Frontmatter    string // raw YAML between the --- fences
	FrontmatterEnd int    // 1-based line of the closing ---
	Body           string
	BodyStartLine  int
}
