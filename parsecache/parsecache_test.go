package parsecache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thailint/thailint-core/model"
)

func TestParsePython(t *testing.T) {
	cache := New()
	src := []byte("def f():\n    return 1\n")
	result := cache.Parse(ContentHash(src), model.LangPython, src)

	require.True(t, result.OK)
	require.NotNil(t, result.Sitter)
	assert.Equal(t, model.LangPython, result.Language)
}

func TestParseIsMemoizedPerContentHash(t *testing.T) {
	cache := New()
	src := []byte("const x = 1;\n")
	hash := ContentHash(src)

	first := cache.Parse(hash, model.LangJavaScript, src)
	second := cache.Parse(hash, model.LangJavaScript, src)

	assert.Same(t, first, second)
	assert.Equal(t, 1, cache.Size())
}

func TestParseConcurrentRequestsCollapseToOneParse(t *testing.T) {
	cache := New()
	src := []byte("x = 1\n")
	hash := ContentHash(src)

	var wg sync.WaitGroup
	results := make([]*model.ParseResult, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Parse(hash, model.LangPython, src)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, 1, cache.Size())
}

func TestParseBashProducesCommentsAndTokens(t *testing.T) {
	cache := New()
	src := []byte("#!/bin/bash\n# a comment\nfor i in 1 2 3; do\n  echo $i\ndone\n")
	result := cache.Parse(ContentHash(src), model.LangBash, src)

	require.True(t, result.OK)
	require.NotNil(t, result.Scan)
	assert.NotEmpty(t, result.Scan.Tokens)

	var sawComment bool
	for _, c := range result.Scan.Comments {
		if c.Text == "# a comment" {
			sawComment = true
		}
	}
	assert.True(t, sawComment)
}

func TestParseCSSProducesTokens(t *testing.T) {
	cache := New()
	src := []byte("/* note */\n.button { color: red; }\n")
	result := cache.Parse(ContentHash(src), model.LangCSS, src)

	require.True(t, result.OK)
	require.NotNil(t, result.Scan)
	assert.NotEmpty(t, result.Scan.Tokens)
	assert.Equal(t, "/* note */", result.Scan.Comments[0].Text)
}

func TestParseMarkdownWithFrontmatter(t *testing.T) {
	cache := New()
	src := []byte("---\ntitle: Hi\n---\n# Heading\n\nbody text\n")
	result := cache.Parse(ContentHash(src), model.LangMarkdown, src)

	require.True(t, result.OK)
	require.NotNil(t, result.Markdown)
	assert.True(t, result.Markdown.HasFrontmatter)
	assert.Contains(t, result.Markdown.Frontmatter, "title: Hi")
	assert.Contains(t, result.Markdown.Body, "# Heading")
}

func TestParseMarkdownWithoutFrontmatter(t *testing.T) {
	cache := New()
	src := []byte("# Heading\n\nbody text\n")
	result := cache.Parse(ContentHash(src), model.LangMarkdown, src)

	require.True(t, result.OK)
	require.False(t, result.Markdown.HasFrontmatter)
	assert.Equal(t, 1, result.Markdown.BodyStartLine)
}

func TestParseOtherLanguageIsNotOK(t *testing.T) {
	cache := New()
	src := []byte("irrelevant")
	result := cache.Parse(ContentHash(src), model.LangOther, src)

	assert.False(t, result.OK)
}

func TestContentHashIsStableAndDistinct(t *testing.T) {
	a := ContentHash([]byte("hello"))
	b := ContentHash([]byte("hello"))
	c := ContentHash([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
