package orchestrator

import (
	"sort"
	"sync"

	"github.com/thailint/thailint-core/model"
)

// aggregator is the orchestrator's append-only violation sink (spec §5:
// "write only to two shared sinks ... protected by internal locks held
// briefly; no rule code holds a lock"), plus the file scan/skip counters
// RunStats reports.
type aggregator struct {
	mu      sync.Mutex
	byKey   map[string]model.Violation
	scanned int
	skipped map[string]int
}

func newAggregator() *aggregator {
	return &aggregator{
		byKey:   map[string]model.Violation{},
		skipped: map[string]int{},
	}
}

func (a *aggregator) add(violations []model.Violation) {
	if len(violations) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, v := range violations {
		a.byKey[v.Key()] = v
	}
}

func (a *aggregator) recordScanned() {
	a.mu.Lock()
	a.scanned++
	a.mu.Unlock()
}

func (a *aggregator) recordSkip(reason string) {
	a.mu.Lock()
	a.skipped[reason]++
	a.mu.Unlock()
}

// sortedUnique returns the final report: every distinct violation, sorted
// by (file_path, line, column, rule_id) per spec §4.1. Deduplication by
// Key() already guarantees no two entries tie on all four fields.
func (a *aggregator) sortedUnique() []model.Violation {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.Violation, 0, len(a.byKey))
	for _, v := range a.byKey {
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
