// Package srp implements C8: the single-responsibility heuristic
// analyser. Per-class method_count/loc/keyword_hit scoring, grounded on
// the same tree-sitter child-walk idiom as rules/nesting.
package srp

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/thailint/thailint-core/builder"
	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/registry"
)

const RuleID = "srp.probable-violation"

var classKinds = map[model.Language]string{
	model.LangPython:     "class_definition",
	model.LangTypeScript: "class_declaration",
	model.LangJavaScript: "class_declaration",
}

var methodKinds = map[model.Language]map[string]bool{
	model.LangPython:     {"function_definition": true},
	model.LangTypeScript: {"method_definition": true},
	model.LangJavaScript: {"method_definition": true},
}

type rule struct{}

func init() { registry.RegisterDefault(rule{}) }

func (rule) ID() string { return RuleID }

func (rule) Languages() []model.Language {
	return []model.Language{model.LangPython, model.LangTypeScript, model.LangJavaScript}
}

func (rule) Describe() registry.RuleDescriptor {
	return registry.RuleDescriptor{
		ID:      RuleID,
		Summary: "a class's method count, line count or name suggests more than one responsibility",
		Default: model.SeverityError,
	}
}

func (rule) Check(ctx *model.FileContext) []model.Violation {
	if ctx.Tree == nil || !ctx.Tree.OK || ctx.Tree.Sitter == nil {
		return nil
	}
	classKind, ok := classKinds[ctx.Language]
	if !ok {
		return nil
	}

	cfg, ok := ctx.RuleConfig(RuleID).(config.SRPConfig)
	if !ok {
		cfg = config.SRPConfig{MaxMethods: 7, MaxLOC: 200, Keywords: []string{"Manager", "Handler", "Processor", "Utility", "Helper"}}
	}

	var violations []model.Violation
	root := ctx.Tree.Sitter.RootNode()

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == classKind {
			if v, ok := checkClass(ctx, n, cfg); ok {
				violations = append(violations, v)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	return violations
}

func checkClass(ctx *model.FileContext, class *sitter.Node, cfg config.SRPConfig) (model.Violation, bool) {
	name := className(class, ctx.Bytes)
	methods := classMethods(class, ctx.Language, ctx.Bytes)

	if len(methods) > 0 && allAbstract(methods, ctx.Bytes) {
		return model.Violation{}, false
	}

	methodCount := len(methods)
	loc := classLOC(class, ctx.Bytes)
	keywordHit := hasKeyword(name, cfg.Keywords)

	triggers := 0
	if methodCount > cfg.MaxMethods {
		triggers++
	}
	if loc > cfg.MaxLOC {
		triggers++
	}
	if keywordHit {
		triggers++
	}
	if triggers == 0 {
		return model.Violation{}, false
	}

	word := "heuristics"
	if triggers == 1 {
		word = "heuristic"
	}
	line := int(class.StartPoint().Row) + 1
	col := int(class.StartPoint().Column) + 1

	v := builder.New(
		RuleID, RuleID, ctx.Path, line, col,
		"class "+name+" probably has more than one responsibility ("+itoa(triggers)+" "+word+")",
		"split the class along its distinct responsibilities",
		model.SeverityError,
	)
	return v, true
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}

func className(class *sitter.Node, src []byte) string {
	if name := class.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	return ""
}

func classBody(class *sitter.Node) *sitter.Node {
	if body := class.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := 0; i < int(class.ChildCount()); i++ {
		c := class.Child(i)
		if c.Type() == "block" || c.Type() == "class_body" {
			return c
		}
	}
	return nil
}

func classMethods(class *sitter.Node, lang model.Language, src []byte) []*sitter.Node {
	body := classBody(class)
	if body == nil {
		return nil
	}
	kinds := methodKinds[lang]
	var out []*sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		node := child
		if child.Type() == "decorated_definition" {
			if isPropertyDecorated(child, src) {
				continue
			}
			if inner := child.ChildByFieldName("definition"); inner != nil {
				node = inner
			}
		}
		if kinds[node.Type()] {
			out = append(out, node)
		}
	}
	return out
}

// isPropertyDecorated reports whether a Python decorated_definition is a
// @property (or similar descriptor) accessor, which spec §4.6 excludes
// from method_count.
func isPropertyDecorated(decorated *sitter.Node, src []byte) bool {
	for i := 0; i < int(decorated.ChildCount()); i++ {
		c := decorated.Child(i)
		if c.Type() == "decorator" {
			text := c.Content(src)
			if strings.Contains(text, "property") || strings.Contains(text, "setter") || strings.Contains(text, "getter") {
				return true
			}
		}
	}
	return false
}

func classLOC(class *sitter.Node, src []byte) int {
	start := int(class.StartPoint().Row)
	end := int(class.EndPoint().Row)
	lines := strings.Split(string(src), "\n")
	count := 0
	for i := start; i <= end && i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		count++
	}
	return count
}

func hasKeyword(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// allAbstract reports whether every method is a bare abstract stub: a
// single-statement body of `...` or `raise NotImplementedError`, or
// decorated with @abstractmethod. A `pass` body alone is not abstract. Used as the conservative
// interface-only false-positive guard (spec §4.6).
func allAbstract(methods []*sitter.Node, src []byte) bool {
	for _, m := range methods {
		if !isAbstractMethod(m, src) {
			return false
		}
	}
	return true
}

func isAbstractMethod(method *sitter.Node, src []byte) bool {
	if p := method.Parent(); p != nil && p.Type() == "decorated_definition" {
		for i := 0; i < int(p.ChildCount()); i++ {
			if c := p.Child(i); c.Type() == "decorator" && strings.Contains(c.Content(src), "abstractmethod") {
				return true
			}
		}
	}
	body := method.ChildByFieldName("body")
	if body == nil {
		return true
	}
	text := strings.TrimSpace(body.Content(src))
	switch text {
	case "...", "raise NotImplementedError", "raise NotImplementedError()":
		return true
	}
	return strings.Contains(text, "NotImplementedError") && len(strings.Split(text, "\n")) <= 2
}
