// Package dry implements C9/C14: the cross-file duplicate-code detector,
// backed by an incremental on-disk fingerprint cache (drycache). Unlike
// every other built-in rule, DRY is stateful across a run: Check only
// tokenises, fingerprints, and accumulates; Finalize performs the
// cross-file clustering once every file has been visited (spec §4.7).
package dry

import (
	"sync"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/drycache"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/registry"
)

const RuleID = "dry.duplicate-code"

// Rule is registered as a pointer because, unlike the stateless value-type
// rules, it owns a cross-file accumulator and a lazily opened cache store.
type Rule struct {
	acc *accumulator

	once     sync.Once
	cacheDir string
	cache    *drycache.Store

	mu                 sync.Mutex
	lastMinOccurrences int
}

func New() *Rule {
	return &Rule{acc: newAccumulator()}
}

func init() {
	registry.RegisterDefault(New())
}

func (*Rule) ID() string { return RuleID }

func (*Rule) Languages() []model.Language {
	return []model.Language{
		model.LangPython, model.LangTypeScript, model.LangJavaScript,
		model.LangBash, model.LangCSS,
	}
}

func (*Rule) Describe() registry.RuleDescriptor {
	return registry.RuleDescriptor{
		ID:      RuleID,
		Summary: "near-identical code blocks repeated across files or within a file",
		Default: model.SeverityError,
	}
}

// Check never reports directly: it tokenises the file, consults (and
// populates) the on-disk fingerprint cache, and folds the resulting
// windows into the shared accumulator for Finalize to cluster.
func (r *Rule) Check(ctx *model.FileContext) []model.Violation {
	tokens := tokenize(ctx)
	if len(tokens) == 0 {
		return nil
	}

	cfg, ok := ctx.RuleConfig(RuleID).(config.DRYConfig)
	if !ok {
		cfg = config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: ".thailint-cache/dry"}
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = 8
	}
	if cfg.MinOccurrences <= 0 {
		cfg.MinOccurrences = 2
	}

	store := r.store(cfg.CacheDir)

	var windows []fpWindow
	if entry, ok := store.Get(ctx.ContentHash, ctx.Language, cfg.MinTokens); ok {
		windows = make([]fpWindow, len(entry.Windows))
		for i, w := range entry.Windows {
			windows[i] = fpWindow{fp: w.Fingerprint, startLine: w.StartLine, endLine: w.EndLine}
		}
	} else {
		windows = buildWindows(tokens, cfg.MinTokens)
		entries := make([]drycache.WindowEntry, len(windows))
		for i, w := range windows {
			entries[i] = drycache.WindowEntry{Fingerprint: w.fp, StartLine: w.startLine, EndLine: w.endLine}
		}
		_ = store.Put(ctx.ContentHash, ctx.Language, cfg.MinTokens, entries)
	}

	r.mu.Lock()
	r.lastMinOccurrences = cfg.MinOccurrences
	r.mu.Unlock()

	r.acc.addFile(ctx.Path, windows)
	return nil
}

// Finalize clusters the accumulated fingerprint index across every file
// seen this run. minOccurrences is read from whatever the last-seen Check
// call resolved; a run with no files touching this rule finalises empty.
func (r *Rule) Finalize() []model.Violation {
	return cluster(r.acc.snapshot(), r.minOccurrences())
}

// minOccurrences is tracked on the Rule itself (lastMinOccurrences):
// different files may in principle carry different min_occurrences via
// per-language overrides, but the cluster pass is global, so the value
// resolved by the last Check call wins. It defaults to 2 when no Check
// has run this run.
func (r *Rule) minOccurrences() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastMinOccurrences == 0 {
		return 2
	}
	return r.lastMinOccurrences
}

// Reset clears cross-file state between runs (registry.Resetter), so that
// reusing a process-wide registry across multiple Orchestrator.LintPath calls
// — as a library embedder naturally would — starts each run with an empty
// accumulator instead of leaking fingerprints from the previous run.
func (r *Rule) Reset() {
	r.acc = newAccumulator()
	r.mu.Lock()
	r.lastMinOccurrences = 0
	r.mu.Unlock()
}

func (r *Rule) store(cacheDir string) *drycache.Store {
	if cacheDir == "" {
		cacheDir = ".thailint-cache/dry"
	}
	r.once.Do(func() {
		r.cacheDir = cacheDir
		r.cache = drycache.Open(cacheDir)
	})
	if r.cacheDir != cacheDir {
		// A directory override changed the cache path mid-run: reopen
		// rather than silently keep writing to the first directory seen.
		r.cacheDir = cacheDir
		r.cache = drycache.Open(cacheDir)
	}
	return r.cache
}
