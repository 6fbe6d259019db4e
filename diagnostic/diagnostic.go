// Package diagnostic implements C15: the structured error taxonomy of
// spec §7. A diagnostic shares the Violation record shape so it can flow
// through the same aggregation, sorting, and formatting path as an
// ordinary rule finding; what distinguishes it is its rule id namespace
// (`fatal.*`, `rule.*`, `engine.*`) and the Kind it carries for exit-code
// computation.
//
// Grounded on the teacher's pattern, in diagnostic/analyzer.go, of
// returning a structured result with an error flag instead of failing the
// caller outright for a recoverable per-unit failure.
package diagnostic

import (
	"fmt"

	"github.com/thailint/thailint-core/model"
)

// Kind classifies a diagnostic for exit-code purposes (spec §7).
type Kind int

const (
	// KindUser: bad configuration, invalid regex in user rule config.
	// Surfaced before linting begins; forces exit code 2.
	KindUser Kind = iota
	// KindResource: file not found, permission denied, file too large,
	// timeout. Pinned to one file; does not abort the run.
	KindResource
	// KindRule: a rule's Check panicked or otherwise failed internally.
	// Other rules continue; forces exit code 1 (treated as a violation).
	KindRule
	// KindEngine: cache corruption, worker pool failure. Forces exit code 2.
	KindEngine
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindResource:
		return "resource"
	case KindRule:
		return "rule"
	case KindEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// New builds one diagnostic Violation. ruleID must already carry the
// correct namespace for kind (fatal.* for resource, rule.crashed for
// rule, engine.* for user/engine) — New does not prefix it, since the
// namespace choice differs per call site and callers read more clearly
// spelling it out. kind does not affect severity: every diagnostic is
// ERROR by default, per spec (no rule text licenses WARNING for any of
// these); kind is carried for ExitCode's 0/1/2 classification only.
func New(kind Kind, ruleID, filePath string, line int, message string) model.Violation {
	if line < 1 {
		line = 1
	}
	return model.Violation{
		RuleID:   ruleID,
		FilePath: filePath,
		Line:     line,
		Column:   1,
		Message:  message,
		Severity: model.SeverityError,
	}
}

// FileTooLarge builds the `fatal.file-too-large` resource diagnostic
// (spec §4.1: "Files larger than an implementation-defined guardrail").
func FileTooLarge(filePath string, size, limit int64, humanSize, humanLimit string) model.Violation {
	return New(KindResource, "fatal.file-too-large", filePath, 1,
		fmt.Sprintf("file is %s, which exceeds the %s size guardrail", humanSize, humanLimit))
}

// FileTimeout builds the `fatal.file-timeout` resource diagnostic (spec
// §5: "an upper timeout per file may be configured").
func FileTimeout(filePath string) model.Violation {
	return New(KindResource, "fatal.file-timeout", filePath, 1,
		"file processing exceeded the configured per-file timeout")
}

// FileUnreadable builds a resource diagnostic for an unreadable file
// (not found, permission denied).
func FileUnreadable(filePath string, cause error) model.Violation {
	return New(KindResource, "fatal.file-unreadable", filePath, 1,
		fmt.Sprintf("could not read file: %v", cause))
}

// RuleCrashed builds the `rule.crashed` diagnostic (spec §7: "a rule's
// check function fails internally").
func RuleCrashed(ruleID, filePath string, recovered any) model.Violation {
	return New(KindRule, "rule.crashed", filePath, 1,
		fmt.Sprintf("rule %q panicked: %v", ruleID, recovered))
}

// ConfigInvalid builds the `engine.config-invalid` user diagnostic (spec
// §7: "surfaced as a startup diagnostic carrying the configuration path
// and the offending field"); emitted before any file is linted.
func ConfigInvalid(configPath string, cause error) model.Violation {
	return New(KindUser, "engine.config-invalid", configPath, 1,
		fmt.Sprintf("invalid configuration: %v", cause))
}

// EngineFailure builds a generic `engine.*` diagnostic for cache
// corruption or worker-pool level failures that are not tied to one file.
func EngineFailure(ruleID, message string) model.Violation {
	return New(KindEngine, ruleID, "", 1, message)
}

// ExitCode computes the §6 exit-code contract from a final, deduplicated
// diagnostic+violation list: 0 no violations, 1 at least one violation,
// 2 at least one engine-kind diagnostic. kindOf resolves each violation's
// RuleID back to a Kind (ordinary rule violations are not diagnostics and
// have no Kind; kindOf reports ok=false for those entries).
func ExitCode(violations []model.Violation, kindOf func(ruleID string) (Kind, bool)) int {
	if len(violations) == 0 {
		return 0
	}
	for _, v := range violations {
		if kind, ok := kindOf(v.RuleID); ok && (kind == KindUser || kind == KindEngine) {
			return 2
		}
	}
	return 1
}
