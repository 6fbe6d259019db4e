// Package suppress implements the five-level suppression engine (C4) and
// the file-header "Suppressions:" reader (C13): PROJECT ignore globs,
// DIRECTORY rule toggles, FILE_HEADER declarations, BLOCK start/end
// comments and single-LINE directives, plus the orphan-suppression
// cross-file finaliser.
package suppress

import (
	"sync"

	"github.com/thailint/thailint-core/model"
)

// DirectoryToggles resolves the DIRECTORY suppression scope: a
// directory-scoped rule disable declared in project configuration. The
// engine depends only on this small interface so it never imports the
// config package.
type DirectoryToggles interface {
	RuleDisabled(relPath, ruleID string) bool
}

type noToggles struct{}

func (noToggles) RuleDisabled(string, string) bool { return false }

// Engine is the suppression state for one run: the project ignore set,
// directory toggles, and every FILE_HEADER directive seen so far (needed
// at the end of the run for orphan detection).
type Engine struct {
	ignores  *IgnoreSet
	dirs     DirectoryToggles
	mu       sync.Mutex
	headers  []*Directive
}

// New builds a suppression Engine. dirs may be nil, meaning no directory
// toggles are configured.
func New(ignores *IgnoreSet, dirs DirectoryToggles) *Engine {
	if ignores == nil {
		ignores = NewIgnoreSet(nil)
	}
	if dirs == nil {
		dirs = noToggles{}
	}
	return &Engine{ignores: ignores, dirs: dirs}
}

// IsPathIgnored implements the PROJECT scope pre-check (spec §4.1 step 1):
// applied before language detection, so an ignored path never even gets a
// Language.
func (e *Engine) IsPathIgnored(relPath string) bool {
	return e.ignores.Matches(relPath)
}

// RuleSuppressedForFile implements the project-wide/directory-wide
// rule-skip check that happens before a rule is ever invoked (spec §4.1
// step 6): "not suppressed project-wide or directory-wide for this file".
func (e *Engine) RuleSuppressedForFile(relPath, ruleID string) bool {
	return e.dirs.RuleDisabled(relPath, ruleID)
}

// FileSuppressions holds every directive found in one file: the result of
// the suppression pre-pass (spec §4.1 step 5).
type FileSuppressions struct {
	filePath string
	lineAndBlock []*Directive
	header       []*Directive
}

// Preprocess runs the suppression pre-pass for one file: scans its raw
// text for LINE/BLOCK directives and its header for FILE_HEADER
// declarations. Raw text is required (not just the parsed tree) because
// directives live in comments some parsers elide (spec §4.3).
func (e *Engine) Preprocess(filePath string, lang model.Language, tree *model.ParseResult, text string) *FileSuppressions {
	fs := &FileSuppressions{
		filePath:     filePath,
		lineAndBlock: scanLineAndBlockDirectives(filePath, lang, text),
		header:       scanHeaderDirectives(filePath, lang, tree, text),
	}

	e.mu.Lock()
	e.headers = append(e.headers, fs.header...)
	e.mu.Unlock()

	return fs
}

// Filter removes every violation covered by a directive in fs, marking
// each directive that suppressed at least one violation as used. Filtering
// is idempotent (invariant i): running it twice over an already-filtered
// list is a no-op because the covering directives no longer match
// anything.
func (fs *FileSuppressions) Filter(violations []model.Violation) []model.Violation {
	out := violations[:0:0]

	for _, v := range violations {
		if fs.suppresses(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (fs *FileSuppressions) suppresses(v model.Violation) bool {
	suppressed := false
	for _, d := range fs.header {
		if d.Matches(v.RuleID) {
			d.used = true
			suppressed = true
		}
	}
	for _, d := range fs.lineAndBlock {
		if d.covers(v.Line) && d.Matches(v.RuleID) {
			d.used = true
			suppressed = true
		}
	}
	return suppressed
}

// OrphanViolations is the cross-file finaliser for C4/C13: every
// FILE_HEADER directive across the whole run that never matched a
// violation becomes a `lazy-ignores.orphaned` violation at its header
// line.
func (e *Engine) OrphanViolations() []model.Violation {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []model.Violation
	for _, d := range e.headers {
		if d.used {
			continue
		}
		ruleID := "*"
		if len(d.RuleIDs) > 0 {
			ruleID = d.RuleIDs[0]
		}
		out = append(out, model.Violation{
			RuleID:   "lazy-ignores.orphaned",
			FilePath: d.FilePath,
			Line:     d.StartLine,
			Column:   1,
			Message:  "suppression for " + ruleID + " is declared but never matched a violation",
			Severity: model.SeverityError,
		})
	}
	return out
}
