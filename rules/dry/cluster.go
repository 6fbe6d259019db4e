package dry

import (
	"fmt"
	"sort"

	"github.com/thailint/thailint-core/builder"
	"github.com/thailint/thailint-core/model"
)

// span is a merged [start,end] line range within one file.
type span struct{ start, end int }

func (s span) overlapsOrAdjacent(o span) bool {
	return s.start <= o.end+1 && o.start <= s.end+1
}

// group is the set of (file, span) sites that describe one duplicated
// block, after merging the family of sliding k-gram windows that all
// describe the same block into a single logical occurrence per file.
type group struct {
	spans map[string][]span
}

func newGroup(locs []location) *group {
	g := &group{spans: map[string][]span{}}
	for _, l := range locs {
		g.addSpan(l.File, span{l.StartLine, l.EndLine})
	}
	return g
}

func (g *group) addSpan(file string, s span) {
	spans := g.spans[file]
	for i, existing := range spans {
		if existing.overlapsOrAdjacent(s) {
			if s.start < existing.start {
				spans[i].start = s.start
			}
			if s.end > existing.end {
				spans[i].end = s.end
			}
			g.spans[file] = spans
			return
		}
	}
	g.spans[file] = append(spans, s)
}

// sharesOverlap reports whether g and o describe overlapping or adjacent
// source ranges in at least one common file — the signal that they are
// sliding-window siblings of the same duplicated block rather than two
// unrelated duplicates that happen to touch the same files.
func (g *group) sharesOverlap(o *group) bool {
	for file, spans := range g.spans {
		others, ok := o.spans[file]
		if !ok {
			continue
		}
		for _, s := range spans {
			for _, os := range others {
				if s.overlapsOrAdjacent(os) {
					return true
				}
			}
		}
	}
	return false
}

func (g *group) merge(o *group) {
	for file, spans := range o.spans {
		for _, s := range spans {
			g.addSpan(file, s)
		}
	}
}

func (g *group) locationCount() int {
	n := 0
	for _, spans := range g.spans {
		n += len(spans)
	}
	return n
}

// mergeGroups repeatedly coalesces groups sharing an overlapping span in a
// common file, until a fixed point. This collapses the family of sliding
// k-gram windows describing one duplicated block into a single group, per
// spec §4.7's "deduplicate so each (file, span) reports only once".
func mergeGroups(groups []*group) []*group {
	for {
		merged := false
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				if groups[i].sharesOverlap(groups[j]) {
					groups[i].merge(groups[j])
					groups = append(groups[:j], groups[j+1:]...)
					merged = true
					break
				}
			}
			if merged {
				break
			}
		}
		if !merged {
			return groups
		}
	}
}

type site struct {
	file       string
	start, end int
}

func (g *group) sites() []site {
	var out []site
	for file, spans := range g.spans {
		cp := append([]span(nil), spans...)
		sort.Slice(cp, func(i, j int) bool { return cp[i].start < cp[j].start })
		for _, s := range cp {
			out = append(out, site{file, s.start, s.end})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].file != out[j].file {
			return out[i].file < out[j].file
		}
		return out[i].start < out[j].start
	})
	return out
}

// cluster turns the accumulator's raw fingerprint->location index into
// Violations, one per surviving duplicate site, cross-referencing its
// siblings. Clusters (after merging) with fewer than minOccurrences
// distinct locations are discarded (spec §4.7: "clusters with fewer than
// min_occurrences distinct locations are discarded").
func cluster(byFP map[uint64][]location, minOccurrences int) []model.Violation {
	fps := make([]uint64, 0, len(byFP))
	for fp := range byFP {
		fps = append(fps, fp)
	}
	sort.Slice(fps, func(i, j int) bool { return fps[i] < fps[j] })

	groups := make([]*group, 0, len(fps))
	for _, fp := range fps {
		groups = append(groups, newGroup(byFP[fp]))
	}
	groups = mergeGroups(groups)

	var violations []model.Violation
	for _, g := range groups {
		if g.locationCount() < minOccurrences {
			continue
		}
		sites := g.sites()
		for idx, s := range sites {
			violations = append(violations, builder.New(
				RuleID, RuleID, s.file, s.start, 1,
				fmt.Sprintf("duplicated code also found at %s", otherSites(sites, idx)),
				"extract the shared logic into a function and call it from each site",
				model.SeverityError,
			))
		}
	}
	return violations
}

func otherSites(sites []site, exclude int) string {
	const maxListed = 3
	var names []string
	for i, s := range sites {
		if i == exclude {
			continue
		}
		names = append(names, fmt.Sprintf("%s:%d", s.file, s.start))
	}
	if len(names) > maxListed {
		extra := len(names) - maxListed
		names = names[:maxListed]
		return joinComma(names) + fmt.Sprintf(" and %d more", extra)
	}
	return joinComma(names)
}

func joinComma(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
