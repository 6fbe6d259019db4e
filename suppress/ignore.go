package suppress

import (
	"bufio"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreRule is one line of a gitignore-style ignore file: a glob pattern
// and whether it excludes (default) or re-includes (negated with "!") a
// match. The include/exclude pairing follows the Action model used by
// gitignore-style tooling in the pack (MoonMoon1919-gignore's
// INCLUDE/EXCLUDE rule types), adapted here for matching rather than
// generation: doublestar provides the actual glob engine.
type IgnoreRule struct {
	Pattern string
	Negate  bool
}

// IgnoreSet is the project-wide ignore glob set (C4's PROJECT scope):
// lines from a `.thailintignore`-style file plus any globs configured
// directly under the config's ignore key. Later rules override earlier
// ones when both match, exactly like .gitignore.
type IgnoreSet struct {
	rules []IgnoreRule
}

// NewIgnoreSet builds an IgnoreSet from literal glob patterns (as loaded
// from config), in order.
func NewIgnoreSet(patterns []string) *IgnoreSet {
	set := &IgnoreSet{}
	for _, p := range patterns {
		set.add(p)
	}
	return set
}

// LoadIgnoreFile reads a gitignore-style file (blank lines and `#`
// comments skipped, `!` negates) and appends its rules to the set.
func (s *IgnoreSet) LoadIgnoreFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.add(line)
	}
	return scanner.Err()
}

func (s *IgnoreSet) add(pattern string) {
	if strings.HasPrefix(pattern, "!") {
		s.rules = append(s.rules, IgnoreRule{Pattern: strings.TrimPrefix(pattern, "!"), Negate: true})
		return
	}
	s.rules = append(s.rules, IgnoreRule{Pattern: pattern})
}

// Matches reports whether relPath is ignored: the last rule that matches
// wins, so a later `!` rule can re-include something an earlier broader
// rule excluded.
func (s *IgnoreSet) Matches(relPath string) bool {
	ignored := false
	relPath = strings.TrimPrefix(relPath, "./")

	for _, rule := range s.rules {
		if globMatch(rule.Pattern, relPath) {
			ignored = !rule.Negate
		}
	}
	return ignored
}

func globMatch(pattern, path string) bool {
	if ok, err := doublestar.Match(pattern, path); err == nil && ok {
		return true
	}
	// A bare directory-style pattern ("vendor", "build/") should also
	// match anything underneath it, matching gitignore semantics.
	trimmed := strings.TrimSuffix(pattern, "/")
	prefixPattern := trimmed + "/**"
	if ok, err := doublestar.Match(prefixPattern, path); err == nil && ok {
		return true
	}
	return strings.HasPrefix(path, trimmed+"/") || path == trimmed
}
