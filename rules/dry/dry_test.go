package dry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/parsecache"
)

func ctxFor(t *testing.T, path, src string, lang model.Language, cfg config.DRYConfig) *model.FileContext {
	t.Helper()
	cache := parsecache.New()
	b := []byte(src)
	hash := parsecache.ContentHash(b)
	tree := cache.Parse(hash, lang, b)
	require.True(t, tree.OK)

	return &model.FileContext{
		Path: path, Bytes: b, Text: src, Language: lang,
		ContentHash: hash, Tree: tree,
		RuleConfig: func(string) any { return cfg },
	}
}

// dup12 is a short function repeated verbatim across 3 files — spec §8
// scenario 2: this rule's tokeniser turns it into 23 tokens, so with
// min_tokens=8 it yields 16 overlapping 8-token windows per file, which
// must collapse to exactly one violation per file.
const dup12 = "def f():\n    total = 0\n    for i in range(10):\n        total = total + i\n    return total\n"

func TestDuplicateAcrossThreeFilesReportsOnePerFile(t *testing.T) {
	r := New()
	cfg := config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: t.TempDir()}

	for _, name := range []string{"a.py", "b.py", "c.py"} {
		ctx := ctxFor(t, name, dup12, model.LangPython, cfg)
		assert.Empty(t, r.Check(ctx))
	}

	violations := r.Finalize()
	require.Len(t, violations, 3)

	files := map[string]bool{}
	for _, v := range violations {
		assert.Equal(t, RuleID, v.RuleID)
		files[v.FilePath] = true
	}
	assert.Equal(t, map[string]bool{"a.py": true, "b.py": true, "c.py": true}, files)
}

func TestSingleOccurrenceBelowMinOccurrencesReportsNothing(t *testing.T) {
	r := New()
	cfg := config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: t.TempDir()}

	ctx := ctxFor(t, "only.py", dup12, model.LangPython, cfg)
	assert.Empty(t, r.Check(ctx))
	assert.Empty(t, r.Finalize())
}

func TestShortFileProducesNoWindows(t *testing.T) {
	r := New()
	cfg := config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: t.TempDir()}

	ctx := ctxFor(t, "tiny.py", "x = 1\n", model.LangPython, cfg)
	assert.Empty(t, r.Check(ctx))
	assert.Empty(t, r.Finalize())
}

func TestCacheIsReusedOnSecondCheckOfSameContent(t *testing.T) {
	r := New()
	dir := t.TempDir()
	cfg := config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: dir}

	ctx1 := ctxFor(t, "a.py", dup12, model.LangPython, cfg)
	require.NoError(t, func() error { r.Check(ctx1); return nil }())

	store := r.store(dir)
	entry, ok := store.Get(ctx1.ContentHash, model.LangPython, 8)
	require.True(t, ok)
	assert.NotEmpty(t, entry.Windows)

	r2 := New()
	ctx2 := ctxFor(t, "b.py", dup12, model.LangPython, cfg)
	r2.Check(ctx2)

	for fp := range r.acc.snapshot() {
		_, ok := r2.acc.snapshot()[fp]
		assert.True(t, ok, "second rule instance should have hit the same on-disk cache entries")
	}
}

func TestResetClearsAccumulator(t *testing.T) {
	r := New()
	cfg := config.DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: t.TempDir()}
	ctx := ctxFor(t, "a.py", dup12, model.LangPython, cfg)
	r.Check(ctx)
	require.NotEmpty(t, r.acc.snapshot())

	r.Reset()
	assert.Empty(t, r.acc.snapshot())
}

func TestUnparseableFileIsSkipped(t *testing.T) {
	r := New()
	ctx := &model.FileContext{Tree: &model.ParseResult{OK: false}}
	assert.Empty(t, r.Check(ctx))
}
