package orchestrator

import (
	"strings"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
)

// ruleConfigFunc builds the per-file RuleConfig closure every rule calls
// through ctx.RuleConfig(ruleID). Dispatch is by the rule id's namespace
// (the segment before the first dot), matching the five built-in rule
// families; a rule id this orchestrator does not recognise gets nil,
// which every built-in rule's Check already treats as "use my defaults".
func ruleConfigFunc(cfg *config.View, lang model.Language) func(string) any {
	return func(ruleID string) any {
		namespace := ruleID
		if i := strings.IndexByte(ruleID, '.'); i >= 0 {
			namespace = ruleID[:i]
		}
		switch namespace {
		case "nesting":
			return cfg.Nesting(lang)
		case "srp":
			return cfg.SRP(lang)
		case "dry":
			return cfg.DRY(lang)
		case "file-placement":
			return cfg.Placement()
		case "performance":
			return cfg.Loop(lang)
		default:
			return nil
		}
	}
}
