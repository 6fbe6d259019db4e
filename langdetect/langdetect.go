// Package langdetect maps a file path (and, for extension-less executables,
// its shebang line) to one of the engine's closed language tags.
//
// Detection order, per spec: explicit configuration override, file
// extension, then shebang. Anything left unresolved is "other" and
// receives no rule invocations.
package langdetect

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/thailint/thailint-core/model"
)

var extensionMap = map[string]model.Language{
	".py":  model.LangPython,
	".pyi": model.LangPython,
	".ts":  model.LangTypeScript,
	".tsx": model.LangTypeScript,
	".js":  model.LangJavaScript,
	".jsx": model.LangJavaScript,
	".mjs": model.LangJavaScript,
	".cjs": model.LangJavaScript,
	".sh":  model.LangBash,
	".bash": model.LangBash,
	".zsh": model.LangBash,
	".md":  model.LangMarkdown,
	".mdx": model.LangMarkdown,
	".markdown": model.LangMarkdown,
	".css": model.LangCSS,
	".scss": model.LangCSS,
}

var shebangMap = map[string]model.Language{
	"python":  model.LangPython,
	"python3": model.LangPython,
	"bash":    model.LangBash,
	"sh":      model.LangBash,
	"zsh":     model.LangBash,
	"node":    model.LangJavaScript,
	"deno":    model.LangTypeScript,
}

// Overrides maps an exact relative or absolute path to a forced language,
// populated from the "language_overrides" block of the project
// configuration (see config.View).
type Overrides map[string]model.Language

// Detect resolves the language for path. firstLine is the file's first
// line (used only when the extension is unknown and the file has an
// executable shebang); pass "" when unavailable or irrelevant.
func Detect(path string, firstLine string, overrides Overrides) model.Language {
	if overrides != nil {
		if lang, ok := overrides[path]; ok {
			return lang
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionMap[ext]; ok {
		return lang
	}

	if lang, ok := detectShebang(firstLine); ok {
		return lang
	}

	return model.LangOther
}

// DetectFirstLine extracts the first line of content for shebang
// inspection without requiring the caller to decode the whole file twice.
func DetectFirstLine(content []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func detectShebang(firstLine string) (model.Language, bool) {
	firstLine = strings.TrimSpace(firstLine)
	if !strings.HasPrefix(firstLine, "#!") {
		return "", false
	}
	interpreterLine := strings.TrimPrefix(firstLine, "#!")
	fields := strings.Fields(interpreterLine)
	if len(fields) == 0 {
		return "", false
	}

	// "#!/usr/bin/env python3" style: the interpreter is the last field.
	interpreter := fields[len(fields)-1]
	if strings.Contains(fields[0], "env") && len(fields) > 1 {
		interpreter = fields[len(fields)-1]
	} else {
		interpreter = filepath.Base(fields[0])
	}

	lang, ok := shebangMap[interpreter]
	return lang, ok
}
