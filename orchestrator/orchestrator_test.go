package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/registry"
	"github.com/thailint/thailint-core/suppress"

	_ "github.com/thailint/thailint-core/rules/dry"
	_ "github.com/thailint/thailint-core/rules/looppattern"
	_ "github.com/thailint/thailint-core/rules/nesting"
	_ "github.com/thailint/thailint-core/rules/placement"
	_ "github.com/thailint/thailint-core/rules/srp"
)

func newTestOrchestrator(t *testing.T, rawConfig map[string]any) *Orchestrator {
	t.Helper()
	cfg := config.FromMap(rawConfig)
	suppression := suppress.New(suppress.NewIgnoreSet(cfg.ProjectIgnorePatterns()), cfg)
	return New(registry.Default, cfg, suppression, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestNestingThresholdBoundaryScenario mirrors spec §8 scenario 1.
func TestNestingThresholdBoundaryScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.py", "def f():\n    if a:\n        for b in c:\n            if d:\n                if e:\n                    pass\n")

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	var nesting []string
	for _, v := range violations {
		if v.RuleID == "nesting.excessive-depth" {
			nesting = append(nesting, v.Message)
		}
	}
	assert.Len(t, nesting, 1)
}

// TestDRYCrossFileClusteringScenario mirrors spec §8 scenario 2.
func TestDRYCrossFileClusteringScenario(t *testing.T) {
	dir := t.TempDir()
	body := "def f():\n    total = 0\n    for i in range(10):\n        total = total + i\n    return total\n"
	writeFile(t, dir, "a.py", body)
	writeFile(t, dir, "b.py", body)
	writeFile(t, dir, "c.py", body)

	orch := newTestOrchestrator(t, map[string]any{
		"dry": map[string]any{"min_tokens": 8, "min_occurrences": 2, "cache_dir": filepath.Join(dir, ".cache")},
	})
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	var dry []string
	for _, v := range violations {
		if v.RuleID == "dry.duplicate-code" {
			dry = append(dry, filepath.Base(v.FilePath))
		}
	}
	require.Len(t, dry, 3)
	assert.Equal(t, []string{"a.py", "b.py", "c.py"}, dry)
}

// TestHeaderSuppressionHonouredScenario mirrors spec §8 scenario 3.
func TestHeaderSuppressionHonouredScenario(t *testing.T) {
	dir := t.TempDir()
	src := "\"\"\"\nSuppressions:\n    nesting.excessive-depth: refactor deferred until v2\n\"\"\"\ndef f():\n    if a:\n        for b in c:\n            if d:\n                if e:\n                    pass\n"
	writeFile(t, dir, "f.py", src)

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	for _, v := range violations {
		assert.NotEqual(t, "nesting.excessive-depth", v.RuleID)
		assert.NotEqual(t, "lazy-ignores.orphaned", v.RuleID)
	}
}

// TestHeaderSuppressionOrphanedScenario mirrors spec §8 scenario 4.
func TestHeaderSuppressionOrphanedScenario(t *testing.T) {
	dir := t.TempDir()
	src := "\"\"\"\nSuppressions:\n    nesting.excessive-depth: refactor deferred until v2\n\"\"\"\ndef f():\n    if a:\n        pass\n"
	writeFile(t, dir, "f.py", src)

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	var orphaned int
	for _, v := range violations {
		if v.RuleID == "lazy-ignores.orphaned" {
			orphaned++
		}
	}
	assert.Equal(t, 1, orphaned)
}

// TestRegexInLoopWithCompiledExceptionScenario mirrors spec §8 scenario 5.
func TestRegexInLoopWithCompiledExceptionScenario(t *testing.T) {
	dir := t.TempDir()
	src := "import re\npat = re.compile(r\"x\")\nfor s in items:\n    pat.search(s)\n    re.match(r\"y\", s)\n"
	writeFile(t, dir, "f.py", src)

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	var regexViolations []int
	for _, v := range violations {
		if v.RuleID == "performance.regex-compile-loop" {
			regexViolations = append(regexViolations, v.Line)
		}
	}
	require.Len(t, regexViolations, 1)
	assert.Equal(t, 5, regexViolations[0])
}

// TestFilePlacementDenyOverridesAllowScenario mirrors spec §8 scenario 6.
func TestFilePlacementDenyOverridesAllowScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	writeFile(t, dir, filepath.Join("src", "test_helpers.py"), "def f(:\n  this is not valid python")

	orch := newTestOrchestrator(t, map[string]any{
		"file-placement": map[string]any{
			"scopes": map[string]any{
				"src": map[string]any{
					"allow": []any{`.*\.py$`},
					"deny": []any{
						map[string]any{"pattern": `.*test.*\.py$`, "reason": "tests belong in tests/"},
					},
				},
			},
		},
	})
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)

	var found bool
	for _, v := range violations {
		if v.RuleID == "file-placement.denied" {
			found = true
			assert.Contains(t, v.Message, "tests belong in tests/")
		}
	}
	assert.True(t, found)
}

func TestEmptyFileProducesNoViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.py", "")

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestFileTooLargeEmitsFatalDiagnosticAndIsSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.py", "x = 1\n")

	orch := newTestOrchestrator(t, nil)
	opts := DefaultOptions()
	opts.FileSizeLimit = 1 // smaller than the file itself
	violations, stats, err := orch.LintPath(path, opts)
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, "fatal.file-too-large", violations[0].RuleID)
	assert.Equal(t, 1, stats.FilesSkipped["too-large"])
}

func TestResultIsSortedByFileLineColumnRuleID(t *testing.T) {
	dir := t.TempDir()
	deep := "def f():\n    if a:\n        for b in c:\n            if d:\n                if e:\n                    pass\n"
	writeFile(t, dir, "a.py", deep)
	writeFile(t, dir, "z.py", deep)

	orch := newTestOrchestrator(t, nil)
	violations, _, err := orch.LintPath(dir, DefaultOptions())
	require.NoError(t, err)
	require.True(t, len(violations) >= 2)

	for i := 1; i < len(violations); i++ {
		prev, cur := violations[i-1], violations[i]
		lessOrEqual := prev.FilePath < cur.FilePath ||
			(prev.FilePath == cur.FilePath && prev.Line < cur.Line) ||
			(prev.FilePath == cur.FilePath && prev.Line == cur.Line && prev.Column <= cur.Column)
		assert.True(t, lessOrEqual)
	}
}

func TestRunIsDeterministicAcrossParallelAndSerial(t *testing.T) {
	dir := t.TempDir()
	deep := "def f():\n    if a:\n        for b in c:\n            if d:\n                if e:\n                    pass\n"
	for i := 0; i < 5; i++ {
		writeFile(t, dir, string(rune('a'+i))+".py", deep)
	}

	orch := newTestOrchestrator(t, nil)
	serialOpts := DefaultOptions()
	serialOpts.Parallel = false
	serial, _, err := orch.LintPath(dir, serialOpts)
	require.NoError(t, err)

	parallelOpts := DefaultOptions()
	parallelOpts.Parallel = true
	parallel, _, err := orch.LintPath(dir, parallelOpts)
	require.NoError(t, err)

	require.Equal(t, len(serial), len(parallel))
	for i := range serial {
		assert.Equal(t, serial[i], parallel[i])
	}
}
