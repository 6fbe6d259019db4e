// Package builder provides the single constructor every rule uses to
// produce a Violation (C16), enforcing the uniform-construction
// invariants spec §4.10 names: rule id matches the caller's declared id,
// line/column are in range, message has no trailing period, suggestion
// (when present) is non-empty.
package builder

import (
	"fmt"
	"strings"

	"github.com/thailint/thailint-core/model"
)

// Strict, when true, makes New panic on a violated invariant instead of
// silently repairing it (spec §4.10: "enforced in debug builds and
// degraded to best-effort in release"). Sessions that want debug-build
// strictness set this at process startup; it is intentionally a package
// variable rather than a parameter because every rule in the registry
// calls through this one constructor and should not thread a flag.
var Strict = false

// New constructs a Violation for ruleID, enforcing C16's invariants. When
// Strict is false (the default, "release" behaviour) it degrades
// best-effort: out-of-range columns are clamped to 0 and a missing
// message is replaced by a placeholder rather than panicking, so a single
// malformed rule cannot crash an entire run.
func New(ruleID string, declaredID string, filePath string, line, column int, message, suggestion string, severity model.Severity) model.Violation {
	if ruleID != declaredID {
		fail("builder: rule_id %q does not match declared id %q", ruleID, declaredID)
	}
	if line < 1 {
		fail("builder: line %d is < 1 for rule %q", line, ruleID)
		line = 1
	}
	if column < 0 {
		fail("builder: column %d is negative for rule %q", column, ruleID)
		column = 0
	}
	message = strings.TrimSpace(message)
	if message == "" {
		fail("builder: empty message for rule %q", ruleID)
		message = "violation"
	}
	if strings.HasSuffix(message, ".") {
		fail("builder: message for rule %q ends with a period", ruleID)
		message = strings.TrimSuffix(message, ".")
	}
	if suggestion != "" {
		suggestion = strings.TrimSpace(suggestion)
	}
	if !severity.Valid() {
		fail("builder: invalid severity %q for rule %q", severity, ruleID)
		severity = model.SeverityError
	}

	return model.Violation{
		RuleID:     ruleID,
		FilePath:   filePath,
		Line:       line,
		Column:     column,
		Message:    message,
		Suggestion: suggestion,
		Severity:   severity,
	}
}

func fail(format string, args ...any) {
	if Strict {
		panic(fmt.Sprintf(format, args...))
	}
}
