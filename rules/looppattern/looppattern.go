// Package looppattern implements C11: the loop anti-pattern rule family
// (statement-call-in-loop, string-concat-in-loop, regex-compile-in-loop),
// three independently configurable rules sharing one AST walker, all
// under the performance.* namespace (spec §4.9).
package looppattern

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/thailint/thailint-core/builder"
	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/registry"
)

const (
	RuleCallInLoop    = "performance.call-in-loop"
	RuleStringConcat  = "performance.string-concat-loop"
	RuleRegexCompile  = "performance.regex-compile-loop"
)

var loopKinds = map[model.Language]map[string]bool{
	model.LangPython: {"for_statement": true, "while_statement": true},
	model.LangTypeScript: {
		"for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true,
	},
	model.LangJavaScript: {
		"for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true,
	},
}

var regexCompileTargets = map[string]bool{
	"match": true, "search": true, "sub": true, "findall": true, "split": true, "fullmatch": true,
}

type rule struct{}

func init() { registry.RegisterDefault(rule{}) }

func (rule) ID() string { return RuleCallInLoop }

func (rule) Languages() []model.Language {
	return []model.Language{model.LangPython, model.LangTypeScript, model.LangJavaScript}
}

func (rule) Describe() registry.RuleDescriptor {
	return registry.RuleDescriptor{
		ID:      RuleCallInLoop,
		Summary: "a loop body contains a call-in-loop, string-concat-in-loop, or regex-compile-in-loop anti-pattern",
		Default: model.SeverityError,
	}
}

func (rule) Check(ctx *model.FileContext) []model.Violation {
	if ctx.Tree == nil || !ctx.Tree.OK || ctx.Tree.Sitter == nil {
		return nil
	}
	kinds := loopKinds[ctx.Language]
	if kinds == nil {
		return nil
	}

	cfg, ok := ctx.RuleConfig(RuleCallInLoop).(config.LoopConfig)
	if !ok {
		cfg = config.LoopConfig{
			CallInLoop:   config.CallInLoopConfig{Enabled: true},
			StringConcat: config.StringConcatConfig{Enabled: true},
			RegexCompile: config.RegexCompileConfig{Enabled: true},
		}
	}

	root := ctx.Tree.Sitter.RootNode()
	src := ctx.Bytes
	var violations []model.Violation

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if kinds[n.Type()] {
			loop := n
			body := loopBody(loop)
			iterVars := loopIterVars(loop, src)

			if cfg.CallInLoop.Enabled {
				violations = append(violations, checkCallInLoop(ctx, body, iterVars, cfg.CallInLoop)...)
			}
			if cfg.StringConcat.Enabled {
				violations = append(violations, checkStringConcat(ctx, loop, body, cfg.StringConcat)...)
			}
			if cfg.RegexCompile.Enabled && ctx.Language == model.LangPython {
				violations = append(violations, checkRegexCompileInLoop(ctx, root, loop, body)...)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	return violations
}

func loopBody(loop *sitter.Node) *sitter.Node {
	if b := loop.ChildByFieldName("body"); b != nil {
		return b
	}
	return loop
}

func loopIterVars(loop *sitter.Node, src []byte) []string {
	left := loop.ChildByFieldName("left")
	if left == nil {
		return nil
	}
	text := left.Content(src)
	var out []string
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func forEachStatement(body *sitter.Node, visit func(*sitter.Node)) {
	if body == nil {
		return
	}
	visit(body)
	for i := 0; i < int(body.ChildCount()); i++ {
		forEachStatement(body.Child(i), visit)
	}
}

func checkCallInLoop(ctx *model.FileContext, body *sitter.Node, iterVars []string, cfg config.CallInLoopConfig) []model.Violation {
	if len(iterVars) == 0 {
		return nil
	}
	allow := map[string]bool{}
	for _, a := range cfg.AllowList {
		allow[a] = true
	}

	var violations []model.Violation
	forEachStatement(body, func(n *sitter.Node) {
		if n.Type() != "expression_statement" {
			return
		}
		call := firstCallChild(n)
		if call == nil {
			return
		}
		name := callName(call, ctx.Bytes)
		if allow[name] {
			return
		}
		if !callUsesAnyArg(call, ctx.Bytes, iterVars) {
			return
		}
		line := int(n.StartPoint().Row) + 1
		col := int(n.StartPoint().Column) + 1
		violations = append(violations, builder.New(
			RuleCallInLoop, RuleCallInLoop, ctx.Path, line, col,
			"side-effectful call using the loop variable should be batched outside the loop",
			"collect results and issue one batched call after the loop",
			model.SeverityError,
		))
	})
	return violations
}

func firstCallChild(stmt *sitter.Node) *sitter.Node {
	for i := 0; i < int(stmt.ChildCount()); i++ {
		c := stmt.Child(i)
		if c.Type() == "call" || c.Type() == "call_expression" {
			return c
		}
	}
	return nil
}

func callName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	text := fn.Content(src)
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		return text[idx+1:]
	}
	return text
}

func callUsesAnyArg(call *sitter.Node, src []byte, iterVars []string) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	text := args.Content(src)
	for _, v := range iterVars {
		if containsIdentifier(text, v) {
			return true
		}
	}
	return false
}

func containsIdentifier(text, ident string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], ident)
		if i < 0 {
			return false
		}
		pos := idx + i
		before := byte(' ')
		if pos > 0 {
			before = text[pos-1]
		}
		after := byte(' ')
		if pos+len(ident) < len(text) {
			after = text[pos+len(ident)]
		}
		if !isIdentByte(before) && !isIdentByte(after) {
			return true
		}
		idx = pos + len(ident)
		if idx >= len(text) {
			return false
		}
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

var stringLikeSubstrings = []string{"str", "msg", "text", "html", "result", "output", "content", "line", "url", "sql", "json", "xml", "csv", "body", "response"}

func checkStringConcat(ctx *model.FileContext, loop, body *sitter.Node, cfg config.StringConcatConfig) []model.Violation {
	substrings := cfg.Substrings
	if len(substrings) == 0 {
		substrings = stringLikeSubstrings
	}
	emptyInit := emptyStringInitializers(loop, ctx.Bytes)

	var violations []model.Violation
	var firstLine, firstCol int
	count := 0

	forEachStatement(body, func(n *sitter.Node) {
		target, ok := concatTarget(n, ctx.Bytes)
		if !ok {
			return
		}
		likely := nameLooksStringy(target, substrings) || emptyInit[target]
		if !likely {
			return
		}
		count++
		if count == 1 {
			firstLine = int(n.StartPoint().Row) + 1
			firstCol = int(n.StartPoint().Column) + 1
		}
		if cfg.ReportEachConcat {
			line := int(n.StartPoint().Row) + 1
			col := int(n.StartPoint().Column) + 1
			violations = append(violations, stringConcatViolation(ctx.Path, line, col))
		}
	})

	if !cfg.ReportEachConcat && count > 0 {
		violations = append(violations, stringConcatViolation(ctx.Path, firstLine, firstCol))
	}
	return violations
}

func stringConcatViolation(path string, line, col int) model.Violation {
	return builder.New(
		RuleStringConcat, RuleStringConcat, path, line, col,
		"string accumulated with += or x = x + ... inside a loop is quadratic",
		`use "".join(...) or a builder pattern instead`,
		model.SeverityError,
	)
}

// concatTarget recognises `x = x + <expr>` or `x += <expr>` and returns x.
func concatTarget(n *sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "augmented_assignment", "augmented_assignment_expression":
		left := n.ChildByFieldName("left")
		op := n.ChildByFieldName("operator")
		if left == nil || op == nil {
			return "", false
		}
		if op.Content(src) != "+=" {
			return "", false
		}
		return strings.TrimSpace(left.Content(src)), true
	case "assignment", "assignment_expression", "expression_statement":
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil {
			return "", false
		}
		name := strings.TrimSpace(left.Content(src))
		rightText := strings.TrimSpace(right.Content(src))
		if (right.Type() == "binary_operator" || right.Type() == "binary_expression") && strings.HasPrefix(rightText, name+" +") {
			return name, true
		}
		return "", false
	default:
		return "", false
	}
}

func emptyStringInitializers(loop *sitter.Node, src []byte) map[string]bool {
	out := map[string]bool{}
	parent := loop.Parent()
	if parent == nil {
		return out
	}
	for i := 0; i < int(parent.ChildCount()); i++ {
		sibling := parent.Child(i)
		if sibling.StartByte() >= loop.StartByte() {
			break
		}
		if sibling.Type() == "expression_statement" && sibling.NamedChildCount() > 0 {
			sibling = sibling.NamedChild(0)
		}
		if sibling.Type() != "assignment" && sibling.Type() != "assignment_expression" {
			continue
		}
		left := sibling.ChildByFieldName("left")
		right := sibling.ChildByFieldName("right")
		if left == nil || right == nil {
			continue
		}
		val := strings.TrimSpace(right.Content(src))
		if val == `""` || val == "''" {
			out[strings.TrimSpace(left.Content(src))] = true
		}
	}
	return out
}

func nameLooksStringy(name string, substrings []string) bool {
	lower := strings.ToLower(name)
	for _, s := range substrings {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func checkRegexCompileInLoop(ctx *model.FileContext, root, loop, body *sitter.Node) []model.Violation {
	compiled := reCompileBindingsOutsideLoop(root, loop, ctx.Bytes)

	var violations []model.Violation
	forEachStatement(body, func(n *sitter.Node) {
		if n.Type() != "call" {
			return
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return
		}
		text := fn.Content(ctx.Bytes)
		parts := strings.Split(text, ".")
		if len(parts) != 2 {
			return
		}
		receiver, method := parts[0], parts[1]
		if !regexCompileTargets[method] {
			return
		}
		if receiver != "re" && compiled[receiver] {
			return
		}
		if receiver != "re" {
			return
		}
		line := int(n.StartPoint().Row) + 1
		col := int(n.StartPoint().Column) + 1
		violations = append(violations, builder.New(
			RuleRegexCompile, RuleRegexCompile, ctx.Path, line, col,
			"regex compiled implicitly on every loop iteration",
			"hoist re.compile(...) outside the loop and reuse the compiled pattern",
			model.SeverityError,
		))
	})
	return violations
}

// reCompileBindingsOutsideLoop collects names bound via `name = re.compile(...)`
// anywhere in the tree that are not themselves inside loop's body (spec
// §4.9: "names assigned inside the loop body do not qualify").
func reCompileBindingsOutsideLoop(root, loop *sitter.Node, src []byte) map[string]bool {
	out := map[string]bool{}
	loopStart, loopEnd := loop.StartByte(), loop.EndByte()

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "assignment" {
			if n.StartByte() >= loopStart && n.EndByte() <= loopEnd {
				// inside the loop body: does not qualify
			} else if left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right"); left != nil && right != nil {
				rt := strings.TrimSpace(right.Content(src))
				if strings.HasPrefix(rt, "re.compile(") {
					out[strings.TrimSpace(left.Content(src))] = true
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}
