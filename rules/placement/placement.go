// Package placement implements C10: the regex-driven file-placement
// analyser. Path-only — it runs even on files that failed to parse,
// making it the last-resort guarantee spec §4.8 describes.
package placement

import (
	"regexp"
	"strings"

	"github.com/thailint/thailint-core/builder"
	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/registry"
)

const (
	RuleAllow = "file-placement.not-allowed"
	RuleDeny  = "file-placement.denied"
)

type rule struct{}

func init() { registry.RegisterDefault(rule{}) }

func (rule) ID() string { return RuleAllow }

func (rule) Languages() []model.Language {
	return []model.Language{
		model.LangPython, model.LangTypeScript, model.LangJavaScript,
		model.LangBash, model.LangMarkdown, model.LangCSS, model.LangOther,
	}
}

func (rule) Describe() registry.RuleDescriptor {
	return registry.RuleDescriptor{
		ID:      RuleAllow,
		Summary: "file path violates a configured directory-scoped allow/deny rule",
		Default: model.SeverityError,
	}
}

func (rule) Check(ctx *model.FileContext) []model.Violation {
	cfg, ok := ctx.RuleConfig(RuleAllow).(config.PlacementConfig)
	if !ok || (len(cfg.Scopes) == 0 && len(cfg.GlobalDeny) == 0) {
		return nil
	}

	relPath := filepathToSlash(ctx.RelPath)
	var violations []model.Violation

	if scope, ok := longestMatchingScope(cfg, relPath); ok {
		if deny, reason, hit := matchesDeny(scope.Deny, relPath); hit {
			violations = append(violations, denyViolation(ctx.Path, deny, reason))
		} else if len(scope.Allow) > 0 && !matchesAny(scope.Allow, relPath) {
			violations = append(violations, builder.New(
				RuleAllow, RuleAllow, ctx.Path, 1, 0,
				"file path does not match any allowed pattern for its directory",
				"move the file to a directory permitted by the configured placement rules",
				model.SeverityError,
			))
		}
	}

	if deny, reason, hit := matchesDeny(cfg.GlobalDeny, relPath); hit {
		violations = append(violations, denyViolation(ctx.Path, deny, reason))
	}

	return violations
}

func denyViolation(path, pattern, reason string) model.Violation {
	msg := "file path matches a denied pattern"
	if reason != "" {
		msg = reason
	}
	msg = strings.TrimSuffix(strings.TrimSpace(msg), ".")
	return builder.New(
		RuleDeny, RuleDeny, path, 1, 0, msg,
		"move or rename the file so it no longer matches pattern "+pattern,
		model.SeverityError,
	)
}

// longestMatchingScope returns the directory-scoped rule whose prefix is
// the longest path prefix of relPath (spec §4.8 step i).
func longestMatchingScope(cfg config.PlacementConfig, relPath string) (config.PlacementScope, bool) {
	bestLen := -1
	var best config.PlacementScope
	found := false

	for prefix, scope := range cfg.Scopes {
		p := strings.TrimSuffix(filepathToSlash(prefix), "/")
		if relPath != p && !strings.HasPrefix(relPath, p+"/") {
			continue
		}
		if len(p) > bestLen {
			bestLen = len(p)
			best = scope
			found = true
		}
	}
	return best, found
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil && re.MatchString(path) {
			return true
		}
	}
	return false
}

func matchesDeny(patterns []config.DenyPattern, path string) (pattern, reason string, hit bool) {
	for _, d := range patterns {
		if re, err := regexp.Compile(d.Pattern); err == nil && re.MatchString(path) {
			return d.Pattern, d.Reason, true
		}
	}
	return "", "", false
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
