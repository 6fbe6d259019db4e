package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thailint/thailint-core/model"
)

// View is the resolved, read-only configuration for one run.
type View struct {
	raw      map[string]map[string]any
	ignore   []string
	dirs     map[string][]string // directory prefix -> disabled rule ids
	overrides map[string]model.Language
	Warnings []string
}

// Load reads a YAML or JSON configuration file (dispatched on extension)
// and produces a View. A missing file yields an all-defaults View — the
// config file is optional, rule defaults stand on their own.
func Load(path string) (*View, error) {
	// godotenv bootstraps process environment from a sibling .env file, the
	// same ambient convenience the teacher wires in at CLI startup; config
	// values never reference env vars directly, but rule implementations
	// reading THAILINT_* flags (telemetry opt-in) depend on this having run.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	raw, err := readRawConfig(path)
	if err != nil {
		return nil, err
	}
	return newView(raw), nil
}

// FromMap builds a View directly from an already-decoded configuration
// map, bypassing file I/O. Used by tests and by callers that assemble
// configuration programmatically.
func FromMap(raw map[string]any) *View {
	return newView(raw)
}

func readRawConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	raw := map[string]any{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parsing %s as JSON: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parsing %s as YAML: %w", path, err)
		}
	}
	return raw, nil
}

func newView(raw map[string]any) *View {
	v := &View{
		raw:       map[string]map[string]any{},
		dirs:      map[string][]string{},
		overrides: map[string]model.Language{},
	}

	for key, val := range raw {
		if !knownTopLevelKeys[key] {
			v.Warnings = append(v.Warnings, fmt.Sprintf("config: unknown top-level key %q", key))
		}
	}

	if ignore, ok := raw["ignore"]; ok {
		v.ignore = toStringSlice(ignore)
	}

	if dirs, ok := raw["directories"].(map[string]any); ok {
		for prefix, block := range dirs {
			if m, ok := block.(map[string]any); ok {
				v.dirs[prefix] = toStringSlice(m["disable"])
			}
		}
	}

	if overrides, ok := raw["language_overrides"].(map[string]any); ok {
		for path, lang := range overrides {
			if s, ok := lang.(string); ok {
				if l, ok := languageSubsectionKeys[strings.ToLower(s)]; ok {
					v.overrides[path] = l
				}
			}
		}
	}

	for _, ruleID := range []string{"nesting", "srp", "dry", "file-placement", "performance"} {
		if m, ok := raw[ruleID].(map[string]any); ok {
			v.raw[ruleID] = m
		}
	}

	return v
}

func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ProjectIgnorePatterns returns the configured project-wide ignore globs
// (the PROJECT suppression scope's config-driven half; the other half is
// the on-disk ignore file loaded separately via suppress.IgnoreSet).
func (v *View) ProjectIgnorePatterns() []string {
	return v.ignore
}

// LanguageOverrides returns the path->language map used to seed
// langdetect.Overrides.
func (v *View) LanguageOverrides() map[string]model.Language {
	return v.overrides
}

// RuleDisabled implements suppress.DirectoryToggles: relPath's rule is
// disabled if it falls under a configured directory prefix that disables
// it (longest-prefix match is not required here — any matching prefix
// disables, matching the simpler "directory config toggle" semantics of
// spec §3's DIRECTORY scope, as opposed to C10's longest-match allow/deny
// scoping which is a different, path-placement-specific algorithm).
func (v *View) RuleDisabled(relPath, ruleID string) bool {
	relPath = filepath.ToSlash(relPath)
	ruleID = strings.ToLower(ruleID)

	for prefix, disabled := range v.dirs {
		prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")
		if relPath != prefix && !strings.HasPrefix(relPath, prefix+"/") {
			continue
		}
		for _, id := range disabled {
			id = strings.ToLower(id)
			if ruleID == id || strings.HasPrefix(ruleID, id+".") {
				return true
			}
		}
	}
	return false
}

// merged returns ruleID's base config map overlaid with its per-language
// override subsection, as a YAML document ready to unmarshal into a typed
// struct. Shallow merge: a field present in the language subsection
// replaces the base field entirely (no list concatenation).
func (v *View) merged(ruleID string, lang model.Language) ([]byte, error) {
	base := v.raw[ruleID]
	out := map[string]any{}
	for k, val := range base {
		if _, isLangKey := languageSubsectionKeys[k]; isLangKey {
			continue
		}
		out[k] = val
	}

	for key, wantLang := range languageSubsectionKeys {
		if wantLang != lang {
			continue
		}
		if sub, ok := base[key].(map[string]any); ok {
			for k, val := range sub {
				out[k] = val
			}
		}
	}

	return yaml.Marshal(out)
}

func decodeInto(v *View, ruleID string, lang model.Language, dst any) error {
	doc, err := v.merged(ruleID, lang)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(doc, dst)
}

// Nesting resolves C7's effective configuration for lang.
func (v *View) Nesting(lang model.Language) NestingConfig {
	cfg := defaultNesting()
	_ = decodeInto(v, "nesting", lang, &cfg)
	return cfg
}

// SRP resolves C8's effective configuration for lang.
func (v *View) SRP(lang model.Language) SRPConfig {
	cfg := defaultSRP()
	_ = decodeInto(v, "srp", lang, &cfg)
	return cfg
}

// DRY resolves C9/C14's effective configuration for lang.
func (v *View) DRY(lang model.Language) DRYConfig {
	cfg := defaultDRY()
	_ = decodeInto(v, "dry", lang, &cfg)
	return cfg
}

// Placement resolves C10's effective configuration. File placement has no
// per-language override subsection; it is inherently path-based.
func (v *View) Placement() PlacementConfig {
	cfg := defaultPlacement()
	doc, err := yaml.Marshal(v.raw["file-placement"])
	if err == nil {
		_ = yaml.Unmarshal(doc, &cfg)
	}
	return cfg
}

// Loop resolves C11's effective configuration for lang.
func (v *View) Loop(lang model.Language) LoopConfig {
	cfg := defaultLoop()
	_ = decodeInto(v, "performance", lang, &cfg)
	return cfg
}

// Validate resolves every rule's configuration once per known language and
// returns an error describing any malformed field, instead of letting a
// bad config surface only lazily mid-run. This is a supplemented feature:
// spec §4.4 specifies unknown-key warnings but does not name an explicit
// validation entry point, which every caller otherwise needs.
func (v *View) Validate() error {
	var problems []string
	for _, lang := range []model.Language{model.LangPython, model.LangTypeScript, model.LangJavaScript, model.LangBash, model.LangMarkdown, model.LangCSS} {
		if err := validateField(func() error {
			var c NestingConfig
			return decodeInto(v, "nesting", lang, &c)
		}); err != nil {
			problems = append(problems, fmt.Sprintf("nesting (%s): %v", lang, err))
		}
		if err := validateField(func() error {
			var c SRPConfig
			return decodeInto(v, "srp", lang, &c)
		}); err != nil {
			problems = append(problems, fmt.Sprintf("srp (%s): %v", lang, err))
		}
		if err := validateField(func() error {
			var c DRYConfig
			return decodeInto(v, "dry", lang, &c)
		}); err != nil {
			problems = append(problems, fmt.Sprintf("dry (%s): %v", lang, err))
		}
		if err := validateField(func() error {
			var c LoopConfig
			return decodeInto(v, "performance", lang, &c)
		}); err != nil {
			problems = append(problems, fmt.Sprintf("performance (%s): %v", lang, err))
		}
	}
	if doc, err := yaml.Marshal(v.raw["file-placement"]); err == nil {
		var c PlacementConfig
		if err := yaml.Unmarshal(doc, &c); err != nil {
			problems = append(problems, fmt.Sprintf("file-placement: %v", err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateField(decode func() error) error {
	return decode()
}
