package dry

import "sync"

// location is one (file, span) occurrence of a fingerprint — spec §3's
// DRY cache-entry/cluster location, with structural equality.
type location struct {
	File      string
	StartLine int
	EndLine   int
}

// accumulator is the DRY rule's cross-file fingerprint index (spec §4.7:
// "the accumulator owns a map fingerprint -> list<location>"). It must
// accept concurrent addFile calls from workers (spec §4.7's performance
// contract); the finaliser runs only after every worker has joined, so
// no lock is needed there.
//
// This is intentionally an instance field on the rule, not a package-level
// variable, so that each Rule value (and each test that builds one with
// New) has its own isolated index.
type accumulator struct {
	mu   sync.Mutex
	byFP map[uint64][]location
}

func newAccumulator() *accumulator {
	return &accumulator{byFP: make(map[uint64][]location)}
}

// addFile registers one file's fingerprinted windows. Exact-duplicate
// locations (the same file contributing the identical span twice, e.g.
// because the cache was read back after a partial run) are deduplicated
// per fingerprint so they cannot inflate the occurrence count.
func (a *accumulator) addFile(file string, windows []fpWindow) {
	if len(windows) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, w := range windows {
		loc := location{File: file, StartLine: w.startLine, EndLine: w.endLine}
		locs := a.byFP[w.fp]
		dup := false
		for _, existing := range locs {
			if existing == loc {
				dup = true
				break
			}
		}
		if !dup {
			a.byFP[w.fp] = append(locs, loc)
		}
	}
}

// snapshot returns a defensive copy of the fingerprint index, safe to read
// without holding a.mu (used by Finalize, which runs single-threaded after
// every worker has joined, but still guards against any straggler call).
func (a *accumulator) snapshot() map[uint64][]location {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[uint64][]location, len(a.byFP))
	for fp, locs := range a.byFP {
		cp := make([]location, len(locs))
		copy(cp, locs)
		out[fp] = cp
	}
	return out
}
