//go:build cgo

package complexity

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammar describes which node types of a language open a function and which
// count as a decision point.
type grammar struct {
	language  func() *sitter.Language
	functions map[string]bool
	decisions map[string]bool
	// logical holds binary node types that only count for && and ||
	logical map[string]bool
	// nameKind is the child node type holding the name when the grammar has
	// no "name" field
	nameKind string
}

func set(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var jsDecisions = set(
	"if_statement", "for_statement", "for_in_statement", "while_statement",
	"do_statement", "switch_case", "catch_clause", "ternary_expression",
	"optional_chain_expression",
)

var jsFunctions = set(
	"function_declaration", "function_expression", "arrow_function",
	"method_definition", "generator_function_declaration",
)

var grammars = map[Language]grammar{
	LangGo: {
		language:  golang.GetLanguage,
		functions: set("function_declaration", "method_declaration", "func_literal"),
		decisions: set("if_statement", "for_statement", "expression_case", "type_case", "communication_case"),
		logical:   set("binary_expression"),
	},
	LangJavaScript: {
		language:  javascript.GetLanguage,
		functions: jsFunctions,
		decisions: jsDecisions,
		logical:   set("binary_expression"),
	},
	LangTypeScript: {
		language:  typescript.GetLanguage,
		functions: jsFunctions,
		decisions: jsDecisions,
		logical:   set("binary_expression"),
	},
	LangTSX: {
		language:  tsx.GetLanguage,
		functions: jsFunctions,
		decisions: jsDecisions,
		logical:   set("binary_expression"),
	},
	LangPython: {
		language:  python.GetLanguage,
		functions: set("function_definition", "lambda"),
		decisions: set(
			"if_statement", "elif_clause", "for_statement", "while_statement",
			"except_clause", "conditional_expression", "for_in_clause",
		),
		logical: set("boolean_operator"),
	},
	LangRust: {
		language:  rust.GetLanguage,
		functions: set("function_item", "closure_expression"),
		decisions: set("if_expression", "match_arm", "while_expression", "loop_expression", "for_expression"),
		logical:   set("binary_expression"),
	},
	LangJava: {
		language:  java.GetLanguage,
		functions: set("method_declaration", "constructor_declaration", "lambda_expression"),
		decisions: set(
			"if_statement", "for_statement", "enhanced_for_statement", "while_statement",
			"do_statement", "switch_block_statement_group", "catch_clause", "ternary_expression",
		),
		logical: set("binary_expression"),
	},
	LangKotlin: {
		language:  kotlin.GetLanguage,
		functions: set("function_declaration", "lambda_literal", "anonymous_function"),
		decisions: set(
			"if_expression", "when_entry", "for_statement", "while_statement",
			"do_while_statement", "catch_block", "elvis_expression",
			"conjunction_expression", "disjunction_expression",
		),
		nameKind: "simple_identifier",
	},
	LangSwift: {
		language:  swift.GetLanguage,
		functions: set("function_declaration", "init_declaration", "lambda_literal"),
		decisions: set(
			"if_statement", "guard_statement", "for_statement", "while_statement",
			"repeat_while_statement", "switch_entry", "catch_block", "ternary_expression",
			"nil_coalescing_expression", "conjunction_expression", "disjunction_expression",
		),
		nameKind: "simple_identifier",
	},
}

// Parser wraps a tree-sitter parser. It is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a tree-sitter parser.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse returns the syntax tree root for source.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	g, ok := grammars[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	p.parser.SetLanguage(g.language())
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

// isLogicalOperator reports whether a binary node joins its operands with a
// short-circuit operator.
func isLogicalOperator(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "&&", "||", "and", "or":
			return true
		}
		if child.ChildCount() == 0 {
			op := string(source[child.StartByte():child.EndByte()])
			if op == "&&" || op == "||" {
				return true
			}
		}
	}
	return false
}
