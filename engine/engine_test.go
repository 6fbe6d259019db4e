package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thailint/thailint-core/model"

	_ "github.com/thailint/thailint-core/rules/nesting"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Nesting(model.LangPython).MaxDepth)
}

func TestBuildEngineRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "thailint.yaml", "nesting:\n  max_depth: \"not-a-number\"\n")
	cfg, err := LoadConfig(filepath.Join(dir, "thailint.yaml"))
	require.NoError(t, err)

	_, err = BuildEngine(cfg, BuildOptions{ProjectRoot: dir})
	assert.Error(t, err)
}

func TestBuildEngineAcceptsValidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	eng, err := BuildEngine(cfg, BuildOptions{ProjectRoot: dir})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestLintOverlappingPathsDoesNotDoubleReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.py", "def f():\n    if a:\n        for b in c:\n            if d:\n                if e:\n                    pass\n")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	eng, err := BuildEngine(cfg, BuildOptions{ProjectRoot: dir})
	require.NoError(t, err)

	result, _, err := eng.Lint([]string{dir, dir}, false)
	require.NoError(t, err)

	var nesting int
	for _, v := range result {
		if v.RuleID == "nesting.excessive-depth" {
			nesting++
		}
	}
	assert.Equal(t, 1, nesting)
}

func TestExitCodeZeroWhenNoViolations(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
}

func TestExitCodeOneForOrdinaryViolation(t *testing.T) {
	violations := SortedViolationList{
		{RuleID: "nesting.excessive-depth", FilePath: "f.py", Line: 1, Column: 1, Severity: model.SeverityError},
	}
	assert.Equal(t, 1, ExitCode(violations))
}

func TestExitCodeTwoForEngineDiagnostic(t *testing.T) {
	violations := SortedViolationList{
		{RuleID: "nesting.excessive-depth", FilePath: "f.py", Line: 1, Column: 1, Severity: model.SeverityError},
		{RuleID: "engine.config-invalid", FilePath: "thailint.yaml", Line: 1, Column: 1, Severity: model.SeverityError},
	}
	assert.Equal(t, 2, ExitCode(violations))
}

func TestExitCodeResourceDiagnosticIsStillOne(t *testing.T) {
	// fatal.* (KindResource) does not force exit code 2 on its own — only
	// user/engine-kind diagnostics do (spec §7).
	violations := SortedViolationList{
		{RuleID: "fatal.file-too-large", FilePath: "big.py", Line: 1, Column: 1, Severity: model.SeverityError},
	}
	assert.Equal(t, 1, ExitCode(violations))
}
