package suppress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thailint/thailint-core/model"
)

func violation(ruleID string, line int) model.Violation {
	return model.Violation{RuleID: ruleID, FilePath: "f.py", Line: line, Column: 1, Message: "bad", Severity: model.SeverityError}
}

func TestLineDirectiveSuppressesSameLine(t *testing.T) {
	e := New(nil, nil)
	text := "x = 1\ny = 2  # thailint: ignore[demo.rule]\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	out := fs.Filter([]model.Violation{violation("demo.rule", 2), violation("demo.rule", 1)})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Line)
}

func TestEmptyRuleListSuppressesEverything(t *testing.T) {
	e := New(nil, nil)
	text := "y = 2  # thailint: ignore\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	out := fs.Filter([]model.Violation{violation("anything.else", 1)})
	assert.Empty(t, out)
}

func TestPrefixMatchOnRuleID(t *testing.T) {
	e := New(nil, nil)
	text := "x()  # thailint: ignore[nesting]\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	out := fs.Filter([]model.Violation{violation("nesting.excessive-depth", 1)})
	assert.Empty(t, out)
}

func TestBlockDirectiveCoversRange(t *testing.T) {
	e := New(nil, nil)
	text := "# thailint: ignore-start[demo.rule]\na = 1\nb = 2\n# thailint: ignore-end\nc = 3\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	out := fs.Filter([]model.Violation{violation("demo.rule", 2), violation("demo.rule", 3), violation("demo.rule", 5)})
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Line)
}

func TestDryAliasSigilIsEquivalent(t *testing.T) {
	e := New(nil, nil)
	text := "def f():\n    pass  # dry: ignore-block\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	out := fs.Filter([]model.Violation{violation("dry", 2)})
	assert.Empty(t, out)
}

func TestHeaderSuppressionHonouredAndNotOrphaned(t *testing.T) {
	e := New(nil, nil)
	text := `"""
Suppressions:
    nesting.excessive-depth: refactor deferred until v2
"""
def f():
    pass
`
	fs := e.Preprocess("f.py", model.LangPython, nil, text)
	out := fs.Filter([]model.Violation{violation("nesting.excessive-depth", 6)})

	assert.Empty(t, out)
	assert.Empty(t, e.OrphanViolations())
}

func TestHeaderSuppressionBecomesOrphanedWhenUnused(t *testing.T) {
	e := New(nil, nil)
	text := `"""
Suppressions:
    nesting.excessive-depth: refactor deferred until v2
"""
def f():
    pass
`
	e.Preprocess("f.py", model.LangPython, nil, text)

	orphans := e.OrphanViolations()
	require.Len(t, orphans, 1)
	assert.Equal(t, "lazy-ignores.orphaned", orphans[0].RuleID)
	assert.Equal(t, 3, orphans[0].Line)
}

func TestHeaderJustificationRequired(t *testing.T) {
	e := New(nil, nil)
	text := `"""
Suppressions:
    nesting.excessive-depth:
"""
def f():
    pass
`
	fs := e.Preprocess("f.py", model.LangPython, nil, text)
	out := fs.Filter([]model.Violation{violation("nesting.excessive-depth", 6)})
	assert.Len(t, out, 1, "an entry with no justification must not suppress anything")
}

func TestFilterIsIdempotent(t *testing.T) {
	e := New(nil, nil)
	text := "y = 2  # thailint: ignore[demo.rule]\n"
	fs := e.Preprocess("f.py", model.LangPython, nil, text)

	once := fs.Filter([]model.Violation{violation("demo.rule", 1), violation("other.rule", 1)})
	twice := fs.Filter(once)
	assert.Equal(t, once, twice)
}

func TestProjectIgnoreSetWithNegation(t *testing.T) {
	set := NewIgnoreSet([]string{"vendor/**", "!vendor/keep.go"})
	assert.True(t, set.Matches("vendor/pkg/file.go"))
	assert.False(t, set.Matches("vendor/keep.go"))
	assert.False(t, set.Matches("src/main.go"))
}

type toggleMap map[string]bool

func (t toggleMap) RuleDisabled(relPath, ruleID string) bool {
	return t[relPath+"\x00"+ruleID]
}

func TestDirectoryToggleSuppressesBeforeRuleRuns(t *testing.T) {
	e := New(nil, toggleMap{"legacy/old.py\x00demo.rule": true})
	assert.True(t, e.RuleSuppressedForFile("legacy/old.py", "demo.rule"))
	assert.False(t, e.RuleSuppressedForFile("fresh/new.py", "demo.rule"))
}
