// Package engine is the Rule API boundary spec §6 describes: the three
// entry points an external CLI/formatter is allowed to depend on —
// load_config, build_engine, engine.lint — plus the exit-code contract
// that ties a SortedViolationList back to a process exit status.
package engine

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/diagnostic"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/orchestrator"
	"github.com/thailint/thailint-core/registry"
	"github.com/thailint/thailint-core/suppress"
	"github.com/thailint/thailint-core/telemetry"
)

// SortedViolationList is the value returned to callers: iterable,
// JSON-serialisable as-is, and the source value an external SARIF
// formatter maps one-to-one into `result` objects (spec §6).
type SortedViolationList []model.Violation

// LoadConfig reads the project configuration file (spec §6's
// `load_config(path) -> ConfigView`). A missing file is not an error —
// every rule stands on its defaults.
func LoadConfig(path string) (*config.View, error) {
	view, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("engine: loading config: %w", err)
	}
	return view, nil
}

// BuildOptions configures construction of an Engine: where to look for a
// `.thailintignore` file, and the logger driving orchestrator progress
// output.
type BuildOptions struct {
	ProjectRoot string
	Logger      *orchestrator.Logger
}

// Engine is the built, ready-to-run linter core (spec §6's
// `build_engine(ConfigView) -> Engine`).
type Engine struct {
	orch *orchestrator.Orchestrator
	cfg  *config.View
}

// BuildEngine validates cfg and wires the suppression engine and
// orchestrator around it. Configuration errors surface here, before any
// file is linted (spec §7: "exits with code 2 before linting begins").
func BuildEngine(cfg *config.View, build BuildOptions) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	ignores := suppress.NewIgnoreSet(cfg.ProjectIgnorePatterns())
	if build.ProjectRoot != "" {
		if err := ignores.LoadIgnoreFile(filepath.Join(build.ProjectRoot, ".thailintignore")); err != nil {
			return nil, fmt.Errorf("engine: loading ignore file: %w", err)
		}
	}
	suppressionEngine := suppress.New(ignores, cfg)

	orch := orchestrator.New(registry.Default, cfg, suppressionEngine, build.Logger)
	return &Engine{orch: orch, cfg: cfg}, nil
}

// Lint implements `engine.lint(path_or_paths, parallel) -> SortedViolationList`.
// Each path is walked and processed independently; the combined result is
// deduplicated and re-sorted across all of them, so passing overlapping
// paths never double-reports a file.
func (e *Engine) Lint(paths []string, parallel bool) (SortedViolationList, orchestrator.RunStats, error) {
	opts := orchestrator.DefaultOptions()
	opts.Parallel = parallel

	combined := newCombinedStats()
	start := time.Now()

	var all []model.Violation
	for _, p := range paths {
		violations, stats, err := e.orch.LintPath(p, opts)
		if err != nil {
			return nil, combined.stats, fmt.Errorf("engine: linting %s: %w", p, err)
		}
		all = append(all, violations...)
		combined.merge(stats)
	}
	combined.stats.Elapsed = time.Since(start)

	result := dedupeAndSort(all)

	if telemetry.Enabled() {
		telemetry.ReportRunFinished(combined.stats.FilesScanned, totalSkipped(combined.stats), len(result), combined.stats.Elapsed.Seconds())
	}

	return result, combined.stats, nil
}

func totalSkipped(s orchestrator.RunStats) int {
	n := 0
	for _, count := range s.FilesSkipped {
		n += count
	}
	return n
}

type combinedStats struct {
	stats orchestrator.RunStats
}

func newCombinedStats() *combinedStats {
	return &combinedStats{stats: orchestrator.RunStats{
		FilesSkipped:     map[string]int{},
		ViolationsByRule: map[string]int{},
	}}
}

func (c *combinedStats) merge(s orchestrator.RunStats) {
	c.stats.FilesScanned += s.FilesScanned
	for reason, n := range s.FilesSkipped {
		c.stats.FilesSkipped[reason] += n
	}
	for ruleID, n := range s.ViolationsByRule {
		c.stats.ViolationsByRule[ruleID] += n
	}
}

func dedupeAndSort(violations []model.Violation) SortedViolationList {
	byKey := make(map[string]model.Violation, len(violations))
	for _, v := range violations {
		byKey[v.Key()] = v
	}
	out := make(SortedViolationList, 0, len(byKey))
	for _, v := range byKey {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		if out[i].Column != out[j].Column {
			return out[i].Column < out[j].Column
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

// ExitCode computes the §6 exit-code contract for a final violation list:
// 0 no violations, 1 at least one violation, 2 at least one engine-kind
// diagnostic (engine.* or a startup config failure).
func ExitCode(violations SortedViolationList) int {
	return diagnostic.ExitCode(violations, diagnosticKindOf)
}

func diagnosticKindOf(ruleID string) (diagnostic.Kind, bool) {
	switch {
	case strings.HasPrefix(ruleID, "engine."):
		return diagnostic.KindEngine, true
	case strings.HasPrefix(ruleID, "fatal."):
		return diagnostic.KindResource, true
	case ruleID == "rule.crashed":
		return diagnostic.KindRule, true
	default:
		return 0, false
	}
}
