// Package config loads the project configuration file (YAML or JSON) and
// exposes a read-only, per-rule, per-language typed view (C6). Configuration
// is resolved once at startup and never mutated afterward.
package config

import "github.com/thailint/thailint-core/model"

// NestingConfig is the C7 schema. Default: MaxDepth 4 (spec §4.4).
type NestingConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// SRPConfig is the C8 schema. Defaults: 7 methods, 200 LOC, the keyword
// list named in spec §4.4.
type SRPConfig struct {
	MaxMethods int      `yaml:"max_methods"`
	MaxLOC     int      `yaml:"max_loc"`
	Keywords   []string `yaml:"keywords"`
}

// DRYConfig is the C9/C14 schema. Defaults: 8 min tokens, 2 min
// occurrences, cache under ".thailint-cache/dry".
type DRYConfig struct {
	MinTokens      int    `yaml:"min_tokens"`
	MinOccurrences int    `yaml:"min_occurrences"`
	CacheDir       string `yaml:"cache_dir"`
}

// DenyPattern is one deny-list entry: a regex plus the human-readable
// reason surfaced in the violation message.
type DenyPattern struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`
}

// PlacementScope is one directory-prefix-scoped allow/deny block (C10).
type PlacementScope struct {
	Allow []string      `yaml:"allow"`
	Deny  []DenyPattern `yaml:"deny"`
}

// PlacementConfig is the C10 schema. Default: empty — file-placement rules
// exist only where the user configures them (spec §4.4).
type PlacementConfig struct {
	Scopes     map[string]PlacementScope `yaml:"scopes"`
	GlobalDeny []DenyPattern             `yaml:"global_deny"`
}

// CallInLoopConfig is the C11 statement-call-in-loop schema.
type CallInLoopConfig struct {
	Enabled   bool     `yaml:"enabled"`
	AllowList []string `yaml:"allow_list"`
}

// StringConcatConfig is the C11 string-concat-in-loop schema.
type StringConcatConfig struct {
	Enabled          bool     `yaml:"enabled"`
	ReportEachConcat bool     `yaml:"report_each_concat"`
	Substrings       []string `yaml:"substrings"`
}

// RegexCompileConfig is the C11 regex-compile-in-loop schema (Python only).
type RegexCompileConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoopConfig is the C11 schema: all three sub-rules enabled by default.
type LoopConfig struct {
	CallInLoop   CallInLoopConfig   `yaml:"call-in-loop"`
	StringConcat StringConcatConfig `yaml:"string-concat-loop"`
	RegexCompile RegexCompileConfig `yaml:"regex-compile-loop"`
}

// DirectoryOverride is one "directories:" entry: rule ids disabled for
// every file under that prefix (the DIRECTORY suppression scope, C4).
type DirectoryOverride struct {
	Disable []string `yaml:"disable"`
}

func defaultNesting() NestingConfig {
	return NestingConfig{MaxDepth: 4}
}

func defaultSRP() SRPConfig {
	return SRPConfig{
		MaxMethods: 7,
		MaxLOC:     200,
		Keywords:   []string{"Manager", "Handler", "Processor", "Utility", "Helper"},
	}
}

func defaultDRY() DRYConfig {
	return DRYConfig{MinTokens: 8, MinOccurrences: 2, CacheDir: ".thailint-cache/dry"}
}

func defaultPlacement() PlacementConfig {
	return PlacementConfig{}
}

func defaultLoop() LoopConfig {
	return LoopConfig{
		CallInLoop:   CallInLoopConfig{Enabled: true},
		StringConcat: StringConcatConfig{Enabled: true, Substrings: defaultStringConcatSubstrings()},
		RegexCompile: RegexCompileConfig{Enabled: true},
	}
}

func defaultStringConcatSubstrings() []string {
	return []string{"str", "msg", "text", "html", "result", "output", "content", "line", "url", "sql", "json", "xml", "csv", "body", "response"}
}

// knownTopLevelKeys is used to produce startup warnings (not failures) for
// unrecognised configuration keys, per spec §4.4.
var knownTopLevelKeys = map[string]bool{
	"ignore":             true,
	"directories":        true,
	"language_overrides": true,
	"nesting":            true,
	"srp":                true,
	"dry":                true,
	"file-placement":     true,
	"performance":        true,
}

var languageSubsectionKeys = map[string]model.Language{
	"python":     model.LangPython,
	"typescript": model.LangTypeScript,
	"javascript": model.LangJavaScript,
	"bash":       model.LangBash,
	"markdown":   model.LangMarkdown,
	"css":        model.LangCSS,
}
