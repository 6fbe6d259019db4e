// Package orchestrator implements C12: the directory walk, per-file
// routing, worker-pool parallel execution, and cross-file aggregation
// that drives a lint_path invocation end to end.
//
// The worker-pool shape (buffered channels, a WaitGroup, per-worker owned
// parser state) is grounded on the teacher's graph/initialize.go, adapted
// from a call-graph builder's fan-out to this engine's
// "detect, parse, suppress, check, filter, aggregate" per-file pipeline.
package orchestrator

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/diagnostic"
	"github.com/thailint/thailint-core/langdetect"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/parsecache"
	"github.com/thailint/thailint-core/registry"
	"github.com/thailint/thailint-core/suppress"
)

// defaultFileSizeLimit is the guardrail spec §4.1 leaves
// implementation-defined ("≥ 10 MiB").
const defaultFileSizeLimit = 10 << 20 // 10 MiB

// Options configures one lint_path invocation.
type Options struct {
	Recurse       bool          // default true
	Parallel      bool          // default true
	WorkerCount   int           // default: logical CPUs (runtime.NumCPU) minus one, min 1
	FileSizeLimit int64         // default 10 MiB; 0 means "use the default"
	FileTimeout   time.Duration // 0 disables the per-file timeout
}

// DefaultOptions returns the engine's default run shape (spec §5: "the
// default is a small constant, e.g. number of physical cores minus one").
func DefaultOptions() Options {
	return Options{
		Recurse:       true,
		Parallel:      true,
		WorkerCount:   defaultWorkerCount(),
		FileSizeLimit: defaultFileSizeLimit,
	}
}

func defaultWorkerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// RunStats is the run's aggregate shape, generalizing the teacher's
// Logger.GetAllTimings / output.BuildSummary into a formatter-independent
// value (SPEC_FULL.md's supplemented orchestrator.RunStats).
type RunStats struct {
	FilesScanned     int
	FilesSkipped     map[string]int // reason -> count
	ViolationsByRule map[string]int
	Elapsed          time.Duration
}

func newRunStats() RunStats {
	return RunStats{
		FilesSkipped:     map[string]int{},
		ViolationsByRule: map[string]int{},
	}
}

// Orchestrator owns everything exclusive to one family of runs: the
// suppression engine, the rule registry handle, and the logger (each
// LintPath call creates its own parse cache). It is safe to call LintPath more than once on the same
// Orchestrator; each call resets the registry's stateful rules first
// (spec's process-wide-registry-reuse concern, see registry.Resetter).
type Orchestrator struct {
	registry    *registry.Registry
	cfg         *config.View
	suppression *suppress.Engine
	logger      *Logger
}

// New builds an Orchestrator. reg is typically registry.Default; logger
// may be nil, in which case a quiet logger is used.
func New(reg *registry.Registry, cfg *config.View, suppressionEngine *suppress.Engine, logger *Logger) *Orchestrator {
	if logger == nil {
		logger = NewLogger(VerbosityQuiet)
	}
	return &Orchestrator{registry: reg, cfg: cfg, suppression: suppressionEngine, logger: logger}
}

// LintPath implements spec §4.1's lint_path operation: walk path,
// process every file it resolves to, and return the sorted, deduplicated
// violation list plus run statistics. Cross-file finalisers (DRY
// clustering, orphan-suppression detection) run after every worker has
// joined.
func (o *Orchestrator) LintPath(path string, opts Options) ([]model.Violation, RunStats, error) {
	start := time.Now()
	stats := newRunStats()

	for _, r := range o.registry.Resetters() {
		r.Reset()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, stats, err
	}

	limit := opts.FileSizeLimit
	if limit <= 0 {
		limit = defaultFileSizeLimit
	}
	workers := opts.WorkerCount
	if workers < 1 {
		workers = defaultWorkerCount()
	}

	files, err := collectFiles(absPath, opts.Recurse)
	if err != nil {
		return nil, stats, err
	}

	cache := parsecache.New()
	root := projectRoot(absPath)

	agg := newAggregator()

	process := func(filePath string) {
		violations, skipReason := o.processFile(filePath, root, cache, limit, opts.FileTimeout)
		if skipReason != "" {
			agg.recordSkip(skipReason)
			agg.add(violations)
			return
		}
		agg.recordScanned()
		agg.add(violations)
	}

	if opts.Parallel && len(files) > 1 {
		runWorkerPool(files, workers, process)
	} else {
		for _, f := range files {
			process(f)
		}
	}

	for _, finaliser := range o.registry.Finalizers() {
		agg.add(finaliser.Finalize())
	}
	agg.add(o.suppression.OrphanViolations())

	result := agg.sortedUnique()
	stats.FilesScanned = agg.scanned
	stats.FilesSkipped = agg.skipped
	for _, v := range result {
		stats.ViolationsByRule[v.RuleID]++
	}
	stats.Elapsed = time.Since(start)

	return result, stats, nil
}

// projectRoot is the directory relative paths (for suppression config,
// file-placement, language overrides) are computed against: root itself
// if it is a directory, its parent if it is a single file.
func projectRoot(absPath string) string {
	if info, err := os.Stat(absPath); err == nil && info.IsDir() {
		return absPath
	}
	return filepath.Dir(absPath)
}

// processFile runs steps 1-7 of spec §4.1 for one file. It returns the
// filtered violation list of a processed file, or a non-empty skipReason:
// "ignored", "other-language", "too-large", "unreadable", or "timeout". A
// file skipped as too large, unreadable or timed out also returns its one
// fatal.* diagnostic alongside the reason.
func (o *Orchestrator) processFile(filePath, root string, cache *parsecache.Cache, sizeLimit int64, timeout time.Duration) ([]model.Violation, string) {
	relPath, err := filepath.Rel(root, filePath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	if o.suppression.IsPathIgnored(relPath) {
		return nil, "ignored"
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return []model.Violation{diagnostic.FileUnreadable(filePath, err)}, "unreadable"
	}
	if info.Size() > sizeLimit {
		v := diagnostic.FileTooLarge(filePath, info.Size(), sizeLimit,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(sizeLimit)))
		return []model.Violation{v}, "too-large"
	}

	if timeout <= 0 {
		return o.processFileBody(filePath, relPath, cache)
	}
	return o.processFileWithTimeout(filePath, relPath, cache, timeout)
}

func (o *Orchestrator) processFileWithTimeout(filePath, relPath string, cache *parsecache.Cache, timeout time.Duration) ([]model.Violation, string) {
	type outcome struct {
		violations []model.Violation
		skip       string
	}
	done := make(chan outcome, 1)
	go func() {
		v, s := o.processFileBody(filePath, relPath, cache)
		done <- outcome{v, s}
	}()

	select {
	case out := <-done:
		return out.violations, out.skip
	case <-time.After(timeout):
		return []model.Violation{diagnostic.FileTimeout(filePath)}, "timeout"
	}
}

func (o *Orchestrator) processFileBody(filePath, relPath string, cache *parsecache.Cache) ([]model.Violation, string) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return []model.Violation{diagnostic.FileUnreadable(filePath, err)}, "unreadable"
	}

	overrides := langdetect.Overrides(o.cfg.LanguageOverrides())
	firstLine := langdetect.DetectFirstLine(bytes)
	lang := langdetect.Detect(relPath, firstLine, overrides)
	if lang == model.LangOther {
		return nil, "other-language"
	}

	contentHash := parsecache.ContentHash(bytes)
	tree := cache.Parse(contentHash, lang, bytes)
	text := toValidUTF8(bytes)

	fs := o.suppression.Preprocess(filePath, lang, tree, text)

	ctx := &model.FileContext{
		Path:        filePath,
		RelPath:     relPath,
		Bytes:       bytes,
		Text:        text,
		Language:    lang,
		ContentHash: contentHash,
		Tree:        tree,
		RuleConfig:  ruleConfigFunc(o.cfg, lang),
	}

	var violations []model.Violation
	for _, rule := range o.registry.ForLanguage(lang) {
		if o.suppression.RuleSuppressedForFile(relPath, rule.ID()) {
			continue
		}
		violations = append(violations, o.invokeRule(rule, ctx)...)
	}

	return fs.Filter(violations), ""
}

// invokeRule calls rule.Check, converting a panic into a rule.crashed
// diagnostic instead of aborting the run (spec §7: "other rules continue").
func (o *Orchestrator) invokeRule(rule registry.Rule, ctx *model.FileContext) (result []model.Violation) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warning("rule %q panicked on %s: %v", rule.ID(), ctx.Path, r)
			result = []model.Violation{diagnostic.RuleCrashed(rule.ID(), ctx.Path, r)}
		}
	}()
	return rule.Check(ctx)
}

func toValidUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// runWorkerPool fans filePaths out across n workers, running process for
// each, and blocks until every file has been processed.
func runWorkerPool(filePaths []string, n int, process func(string)) {
	fileChan := make(chan string, len(filePaths))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for f := range fileChan {
			process(f)
		}
	}

	wg.Add(n)
	for i := 0; i < n; i++ {
		go worker()
	}
	for _, f := range filePaths {
		fileChan <- f
	}
	close(fileChan)
	wg.Wait()
}
