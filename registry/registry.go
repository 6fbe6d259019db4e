// Package registry is the build-time, static rule registry (C5): rules
// register themselves in an init() call, the orchestrator asks for the
// subset applicable to a file's language, and duplicate rule ids are a
// startup error rather than a silent override.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/thailint/thailint-core/model"
)

// RuleDescriptor is the supplemented, human/machine-readable description
// of a rule (id, default severity, free-text summary) for `--list-rules`
// style tooling that introspects the registry.
type RuleDescriptor struct {
	ID       string
	Summary  string
	Default  model.Severity
}

// Finalizer is implemented by rules that need a cross-file pass after
// every file has been checked once (spec §4.1: "cross-file finaliser
// rule has registered" — DRY clustering is the built-in example, but the
// interface is open to any rule). Orphan-suppression detection is not a
// Finalizer: the orchestrator asks the suppression engine for it directly.
type Finalizer interface {
	Finalize() []model.Violation
}

// Resetter is implemented by rules that hold cross-file accumulator state
// which must not leak between runs (the DRY rule's fingerprint index is
// the only built-in example). The orchestrator calls Reset on every
// registered Resetter before each lint_path invocation so that reusing
// the process-wide Default registry across multiple runs — as a library
// embedder naturally would — starts each run from a clean accumulator.
type Resetter interface {
	Reset()
}

// Rule is the interface every analyser implements. Languages restricts
// which files Check is invoked for; Check must not mutate ctx.
type Rule interface {
	ID() string
	Languages() []model.Language
	Describe() RuleDescriptor
	Check(ctx *model.FileContext) []model.Violation
}

// Registry is a set of rules keyed by id, safe for concurrent read access
// once populated. Mutation (Register) is expected only at process startup,
// before any orchestrator run begins.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds rule to the registry. It panics on a duplicate id: two
// rules claiming the same id is a build-time programming error, not a
// runtime condition callers should need to handle.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := rule.ID()
	if _, exists := r.rules[id]; exists {
		panic(fmt.Sprintf("registry: duplicate rule id %q", id))
	}
	r.rules[id] = rule
}

// Get retrieves a rule by id, or nil if none is registered.
func (r *Registry) Get(id string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[id]
}

// All returns every registered rule, sorted by id for deterministic
// iteration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Rule, 0, len(r.rules))
	for _, id := range ids {
		out = append(out, r.rules[id])
	}
	return out
}

// ForLanguage returns the sorted subset of All() applicable to lang.
func (r *Registry) ForLanguage(lang model.Language) []Rule {
	var out []Rule
	for _, rule := range r.All() {
		for _, l := range rule.Languages() {
			if l == lang {
				out = append(out, rule)
				break
			}
		}
	}
	return out
}

// Finalizers returns the sorted subset of All() that also implement
// Finalizer, for the orchestrator's cross-file finalisation pass.
func (r *Registry) Finalizers() []Finalizer {
	var out []Finalizer
	for _, rule := range r.All() {
		if f, ok := rule.(Finalizer); ok {
			out = append(out, f)
		}
	}
	return out
}

// Resetters returns the sorted subset of All() that also implement
// Resetter, for the orchestrator to clear before each run.
func (r *Registry) Resetters() []Resetter {
	var out []Resetter
	for _, rule := range r.All() {
		if rs, ok := rule.(Resetter); ok {
			out = append(out, rs)
		}
	}
	return out
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Default is the process-wide registry that every built-in rule package
// registers itself into via init().
var Default = New()

// RegisterDefault registers rule with the Default registry. Built-in rule
// packages call this from an init() function.
func RegisterDefault(rule Rule) {
	Default.Register(rule)
}
