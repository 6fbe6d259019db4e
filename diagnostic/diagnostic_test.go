package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thailint/thailint-core/model"
)

func TestFileTooLargeCarriesErrorSeverity(t *testing.T) {
	v := FileTooLarge("big.py", 20<<20, 10<<20, "20 MB", "10 MB")
	assert.Equal(t, "fatal.file-too-large", v.RuleID)
	assert.Equal(t, model.SeverityError, v.Severity)
	assert.Contains(t, v.Message, "20 MB")
}

func TestRuleCrashedNamesRuleAndFile(t *testing.T) {
	v := RuleCrashed("nesting.excessive-depth", "f.py", "boom")
	assert.Equal(t, "rule.crashed", v.RuleID)
	assert.Contains(t, v.Message, "nesting.excessive-depth")
	assert.Contains(t, v.Message, "boom")
	assert.Equal(t, model.SeverityError, v.Severity)
}

func TestConfigInvalidSeverityIsError(t *testing.T) {
	v := ConfigInvalid(".thailint.yaml", errors.New("bad yaml"))
	assert.Equal(t, model.SeverityError, v.Severity)
}

func TestExitCodeEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil, func(string) (Kind, bool) { return 0, false }))
}

func TestExitCodeViolationOnlyIsOne(t *testing.T) {
	violations := []model.Violation{{RuleID: "nesting.excessive-depth"}}
	code := ExitCode(violations, func(string) (Kind, bool) { return 0, false })
	assert.Equal(t, 1, code)
}

func TestExitCodeEngineDiagnosticIsTwo(t *testing.T) {
	violations := []model.Violation{
		{RuleID: "nesting.excessive-depth"},
		{RuleID: "engine.config-invalid"},
	}
	code := ExitCode(violations, func(ruleID string) (Kind, bool) {
		if ruleID == "engine.config-invalid" {
			return KindUser, true
		}
		return 0, false
	})
	assert.Equal(t, 2, code)
}
