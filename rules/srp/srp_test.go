package srp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/parsecache"
)

func parseCtx(t *testing.T, src string, cfg config.SRPConfig) *model.FileContext {
	t.Helper()
	cache := parsecache.New()
	b := []byte(src)
	tree := cache.Parse(parsecache.ContentHash(b), model.LangPython, b)
	require.True(t, tree.OK)

	return &model.FileContext{
		Path: "f", Bytes: b, Text: src, Language: model.LangPython, Tree: tree,
		RuleConfig: func(string) any { return cfg },
	}
}

func manyMethodsClass(n int) string {
	var b strings.Builder
	b.WriteString("class Widget:\n")
	for i := 0; i < n; i++ {
		b.WriteString("    def m")
		b.WriteString(itoa(i))
		b.WriteString("(self):\n        pass\n")
	}
	return b.String()
}

func TestTooManyMethodsTriggersOneHeuristic(t *testing.T) {
	cfg := config.SRPConfig{MaxMethods: 2, MaxLOC: 1000, Keywords: nil}
	ctx := parseCtx(t, manyMethodsClass(3), cfg)

	violations := rule{}.Check(ctx)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "1 heuristic")
}

func TestKeywordNameTriggersHeuristic(t *testing.T) {
	cfg := config.SRPConfig{MaxMethods: 100, MaxLOC: 1000, Keywords: []string{"Manager"}}
	ctx := parseCtx(t, "class UserManager:\n    def f(self):\n        pass\n", cfg)

	violations := rule{}.Check(ctx)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "UserManager")
}

func TestWellFormedClassProducesNoViolation(t *testing.T) {
	cfg := config.SRPConfig{MaxMethods: 10, MaxLOC: 1000, Keywords: []string{"Manager"}}
	ctx := parseCtx(t, "class Point:\n    def f(self):\n        pass\n", cfg)

	assert.Empty(t, rule{}.Check(ctx))
}

func TestAbstractOnlyClassIsExempt(t *testing.T) {
	cfg := config.SRPConfig{MaxMethods: 0, MaxLOC: 0, Keywords: []string{"Manager"}}
	ctx := parseCtx(t, "class ManagerBase:\n    def a(self):\n        ...\n    def b(self):\n        raise NotImplementedError\n", cfg)

	assert.Empty(t, rule{}.Check(ctx))
}
