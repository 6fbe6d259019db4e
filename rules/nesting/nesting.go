// Package nesting implements C7: the block-nesting-depth analyser.
// Grounded on the teacher's tree-sitter AST-walk idiom (graph/python and
// graph/parser_java.go use node.Type()/node.ChildByFieldName()/
// node.StartPoint().Row+1 throughout); this package generalises that walk
// into a depth counter instead of a graph builder.
package nesting

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/thailint/thailint-core/builder"
	"github.com/thailint/thailint-core/config"
	"github.com/thailint/thailint-core/model"
	"github.com/thailint/thailint-core/registry"
)

const RuleID = "nesting.excessive-depth"

// functionKinds are the node types that start a fresh function body (depth
// resets to 1 inside them, per spec §4.5).
var functionKinds = map[model.Language]map[string]bool{
	model.LangPython: {"function_definition": true},
	model.LangTypeScript: {
		"function_declaration": true, "function_expression": true,
		"arrow_function": true, "method_definition": true,
	},
	model.LangJavaScript: {
		"function_declaration": true, "function_expression": true,
		"arrow_function": true, "method_definition": true,
	},
}

// depthKinds are constructs that add one level of depth for their own
// body (spec §4.5's explicit list per language family).
var depthKinds = map[model.Language]map[string]bool{
	model.LangPython: {
		"if_statement": true, "elif_clause": true, "for_statement": true,
		"while_statement": true, "with_statement": true, "try_statement": true,
		"except_clause": true, "match_statement": true, "case_clause": true,
	},
	model.LangTypeScript: {
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "try_statement": true,
		"catch_clause": true, "switch_statement": true,
	},
	model.LangJavaScript: {
		"if_statement": true, "for_statement": true, "for_in_statement": true,
		"while_statement": true, "do_statement": true, "try_statement": true,
		"catch_clause": true, "switch_statement": true,
	},
}

// chainKinds are alternative branches that continue an if/elif/else chain
// at the SAME depth as the if that started it (spec §4.5: "else that is
// purely a chained elif/else-if does not add further depth").
var chainKinds = map[string]bool{
	"elif_clause": true,
	"else_clause": true,
}

type rule struct{}

func init() {
	registry.RegisterDefault(rule{})
}

func (rule) ID() string { return RuleID }

func (rule) Languages() []model.Language {
	return []model.Language{model.LangPython, model.LangTypeScript, model.LangJavaScript}
}

func (rule) Describe() registry.RuleDescriptor {
	return registry.RuleDescriptor{
		ID:      RuleID,
		Summary: "function or method body nests control structures beyond the configured depth",
		Default: model.SeverityError,
	}
}

func (rule) Check(ctx *model.FileContext) []model.Violation {
	if ctx.Tree == nil || !ctx.Tree.OK || ctx.Tree.Sitter == nil {
		return nil
	}

	cfg, ok := ctx.RuleConfig(RuleID).(config.NestingConfig)
	if !ok {
		cfg = config.NestingConfig{MaxDepth: 4}
	}

	var violations []model.Violation
	root := ctx.Tree.Sitter.RootNode()
	src := ctx.Bytes

	forEachNode(root, func(n *sitter.Node) {
		if !functionKinds[ctx.Language][n.Type()] {
			return
		}
		body := bodyOf(n)
		if body == nil {
			return
		}
		maxDepth, deepest := walkDepth(body, 1, ctx.Language)
		if maxDepth > cfg.MaxDepth {
			line, col := 1, 1
			if deepest != nil {
				line = int(deepest.StartPoint().Row) + 1
				col = int(deepest.StartPoint().Column) + 1
			}
			violations = append(violations, builder.New(
				RuleID, RuleID, ctx.Path, line, col,
				"function body nests more than the configured maximum depth",
				"extract the innermost block into its own function to flatten nesting",
				model.SeverityError,
			))
		}
	})

	_ = src
	return violations
}

// forEachNode visits every node in the tree rooted at n, pre-order,
// without regard to depth semantics — used only to collect function
// entry points.
func forEachNode(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		forEachNode(n.Child(i), visit)
	}
}

// walkDepth computes the maximum nesting depth reached inside n (n is
// normally a function/clause body), never crossing into a nested
// function's own body (those are analysed independently when the outer
// forEachNode walk reaches them).
func walkDepth(n *sitter.Node, depth int, lang model.Language) (int, *sitter.Node) {
	maxDepth := depth
	var deepest *sitter.Node

	var walk func(node *sitter.Node, d int)
	walk = func(node *sitter.Node, d int) {
		if node == nil {
			return
		}
		if d > maxDepth {
			maxDepth = d
			deepest = node
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			kind := child.Type()

			if functionKinds[lang][kind] {
				continue // nested function: depth resets, handled separately
			}

			if depthKinds[lang][kind] {
				nextDepth := d + 1
				if nextDepth > maxDepth {
					maxDepth = nextDepth
					deepest = child
				}
				body := bodyOf(child)
				walk(body, nextDepth)

				// elif/else chain continuations do not add further depth
				// beyond the containing if. In Python every elif_clause/
				// else_clause is a flat child of the if_statement, so all of
				// them are walked here at the if's own body depth. In TS/JS
				// an `else if` is an if_statement nested in the else_clause;
				// that else_clause is walked at the outer if's depth so the
				// chained if lands on the same level.
				for _, alt := range chainContinuations(child) {
					b := bodyOf(alt)
					if b == alt && alt.NamedChildCount() > 0 && alt.NamedChild(0).Type() == "if_statement" {
						walk(alt, d)
					} else {
						walk(b, nextDepth)
					}
				}

				// except/catch handlers each add one level for their body.
				for j := 0; j < int(child.ChildCount()); j++ {
					if h := child.Child(j); h.Type() == "except_clause" || h.Type() == "catch_clause" {
						walk(bodyOf(h), nextDepth)
					}
				}
				continue
			}

			walk(child, d)
		}
	}

	walk(n, depth)
	return maxDepth, deepest
}

// bodyOf finds the node's body/consequence block, trying the common
// tree-sitter field names across the Python/TS/JS grammars before falling
// back to the last "block"-shaped child — defensive against minor grammar
// naming differences between tree-sitter grammar versions.
func bodyOf(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for _, field := range []string{"consequence", "body"} {
		if c := n.ChildByFieldName(field); c != nil {
			return c
		}
	}
	for i := int(n.ChildCount()) - 1; i >= 0; i-- {
		c := n.Child(i)
		if c.Type() == "block" || c.Type() == "statement_block" || c.Type() == "switch_body" {
			return c
		}
	}
	return n
}

// chainContinuations returns every direct child of n that is an
// elif/else chain continuation (chainKinds). tree-sitter tags all of
// them with the same repeated "alternative" field relative to n, so
// ChildByFieldName would only ever return the first one; a second elif
// or a trailing else needs a direct scan of n's children instead.
func chainContinuations(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if chainKinds[c.Type()] {
			out = append(out, c)
		}
	}
	return out
}
