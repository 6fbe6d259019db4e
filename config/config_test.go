package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thailint/thailint-core/model"
)

func TestDefaultsWithNoConfig(t *testing.T) {
	v := FromMap(map[string]any{})

	assert.Equal(t, 4, v.Nesting(model.LangPython).MaxDepth)
	assert.Equal(t, 7, v.SRP(model.LangPython).MaxMethods)
	assert.Equal(t, 200, v.SRP(model.LangPython).MaxLOC)
	assert.Equal(t, 8, v.DRY(model.LangPython).MinTokens)
	assert.Equal(t, 2, v.DRY(model.LangPython).MinOccurrences)
	assert.True(t, v.Loop(model.LangPython).CallInLoop.Enabled)
	assert.Empty(t, v.Placement().Scopes)
}

func TestBaseConfigOverridesDefault(t *testing.T) {
	v := FromMap(map[string]any{
		"nesting": map[string]any{"max_depth": 6},
	})
	assert.Equal(t, 6, v.Nesting(model.LangPython).MaxDepth)
	assert.Equal(t, 6, v.Nesting(model.LangTypeScript).MaxDepth)
}

func TestLanguageOverrideWinsOverBase(t *testing.T) {
	v := FromMap(map[string]any{
		"nesting": map[string]any{
			"max_depth": 4,
			"python":    map[string]any{"max_depth": 6},
		},
	})
	assert.Equal(t, 6, v.Nesting(model.LangPython).MaxDepth)
	assert.Equal(t, 4, v.Nesting(model.LangTypeScript).MaxDepth)
}

func TestUnknownTopLevelKeyWarnsNotFails(t *testing.T) {
	v := FromMap(map[string]any{"totally_unknown": 1})
	require.Len(t, v.Warnings, 1)
	assert.Contains(t, v.Warnings[0], "totally_unknown")
}

func TestProjectIgnorePatterns(t *testing.T) {
	v := FromMap(map[string]any{
		"ignore": []any{"vendor/**", "!vendor/keep.go"},
	})
	assert.Equal(t, []string{"vendor/**", "!vendor/keep.go"}, v.ProjectIgnorePatterns())
}

func TestDirectoryRuleDisabled(t *testing.T) {
	v := FromMap(map[string]any{
		"directories": map[string]any{
			"legacy": map[string]any{"disable": []any{"nesting"}},
		},
	})
	assert.True(t, v.RuleDisabled("legacy/old.py", "nesting.excessive-depth"))
	assert.False(t, v.RuleDisabled("fresh/new.py", "nesting.excessive-depth"))
}

func TestValidateSucceedsOnWellFormedConfig(t *testing.T) {
	v := FromMap(map[string]any{
		"nesting": map[string]any{"max_depth": 5},
		"dry":     map[string]any{"min_tokens": 10, "min_occurrences": 3},
	})
	assert.NoError(t, v.Validate())
}

func TestPlacementConfigScopes(t *testing.T) {
	v := FromMap(map[string]any{
		"file-placement": map[string]any{
			"scopes": map[string]any{
				"src/handlers": map[string]any{
					"allow": []any{`.*_handler\.py$`},
				},
			},
			"global_deny": []any{
				map[string]any{"pattern": `.*\.bak$`, "reason": "backup files must not be committed"},
			},
		},
	})
	p := v.Placement()
	require.Contains(t, p.Scopes, "src/handlers")
	require.Len(t, p.GlobalDeny, 1)
	assert.Equal(t, "backup files must not be committed", p.GlobalDeny[0].Reason)
}
