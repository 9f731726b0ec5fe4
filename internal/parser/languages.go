package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Language represents supported programming languages
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
)

// grammar describes how one language spells functions in its syntax tree.
type grammar struct {
	language *tree_sitter.Language
	// node kinds that count as a function body
	functionKinds map[string]bool
	// node kinds whose name prefixes a nested function, e.g. a class
	containerKinds map[string]bool
}

func newGrammars() map[Language]grammar {
	return map[Language]grammar{
		LanguageGo: {
			language: tree_sitter.NewLanguage(tree_sitter_go.Language()),
			functionKinds: set(
				"function_declaration",
				"method_declaration",
				"func_literal",
			),
		},
		LanguagePython: {
			language:       tree_sitter.NewLanguage(tree_sitter_python.Language()),
			functionKinds:  set("function_definition"),
			containerKinds: set("class_definition"),
		},
		LanguageJavaScript: {
			language: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			functionKinds: set(
				"function_declaration",
				"generator_function_declaration",
				"function_expression",
				"generator_function",
				"arrow_function",
				"method_definition",
			),
			containerKinds: set("class_declaration", "class"),
		},
	}
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}
