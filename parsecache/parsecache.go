// Package parsecache implements the engine's one-parse-per-run memoisation
// (spec §4.2, C3): a map keyed by (content hash, language) to either a
// successful tree or a recorded parse-error sentinel. Concurrent requests
// for the same key collapse onto a single parse via singleflight, matching
// spec §5's "second requester awaits the first" requirement.
package parsecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"
	"golang.org/x/sync/singleflight"

	"github.com/thailint/thailint-core/model"
)

// ContentHash returns the hex-encoded sha256 of b, the key used throughout
// the engine (parse cache, DRY cache) to identify file content.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Cache is a per-run parse memoisation table. Its zero value is not usable;
// construct with New.
type Cache struct {
	group singleflight.Group
	mu    sync.RWMutex
	byKey map[string]*model.ParseResult
}

// New creates an empty parse cache, scoped to a single engine run.
func New() *Cache {
	return &Cache{byKey: make(map[string]*model.ParseResult)}
}

func cacheKey(contentHash string, lang model.Language) string {
	return string(lang) + "\x00" + contentHash
}

// Parse returns the parsed tree for (contentHash, lang), parsing src exactly
// once per run regardless of how many workers request the same key
// concurrently.
func (c *Cache) Parse(contentHash string, lang model.Language, src []byte) *model.ParseResult {
	key := cacheKey(contentHash, lang)

	c.mu.RLock()
	if cached, ok := c.byKey[key]; ok {
		c.mu.RUnlock()
		return cached
	}
	c.mu.RUnlock()

	result, _, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		if cached, ok := c.byKey[key]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		parsed := parse(lang, src)

		c.mu.Lock()
		c.byKey[key] = parsed
		c.mu.Unlock()
		return parsed, nil
	})

	return result.(*model.ParseResult)
}

// Size returns the number of distinct (content hash, language) entries
// memoised so far this run.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

func parse(lang model.Language, src []byte) *model.ParseResult {
	switch lang {
	case model.LangPython:
		return parseSitter(lang, src, python.GetLanguage())
	case model.LangTypeScript:
		return parseSitter(lang, src, tstypescript.GetLanguage())
	case model.LangJavaScript:
		return parseSitter(lang, src, javascript.GetLanguage())
	case model.LangBash, model.LangCSS:
		return &model.ParseResult{OK: true, Language: lang, Scan: scanTokens(lang, src)}
	case model.LangMarkdown:
		return &model.ParseResult{OK: true, Language: lang, Markdown: parseMarkdown(src)}
	default:
		return &model.ParseResult{OK: false, Language: lang}
	}
}

func parseSitter(lang model.Language, src []byte, language *sitter.Language) *model.ParseResult {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return &model.ParseResult{OK: false, Err: err, Language: lang}
	}
	if tree.RootNode().HasError() {
		// A tree-sitter tree with error nodes still has usable spans for
		// most of the file; report success but let callers inspect
		// RootNode().HasError() themselves if they need to be stricter.
		return &model.ParseResult{OK: true, Language: lang, Sitter: tree}
	}
	return &model.ParseResult{OK: true, Language: lang, Sitter: tree}
}
