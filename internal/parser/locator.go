// Package parser finds the function that encloses a span of source code using
// tree-sitter grammars.
package parser

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"learninghour/internal/models"
	"learninghour/internal/utils"
)

// Locator maps byte spans to their enclosing function.
type Locator struct {
	grammars map[Language]grammar
}

// NewLocator creates a locator for Go, Python and JavaScript.
func NewLocator() *Locator {
	return &Locator{grammars: newGrammars()}
}

// Supports reports whether path has a grammar.
func (l *Locator) Supports(path string) bool {
	_, ok := l.grammars[Language(utils.DetectLanguage(path))]
	return ok
}

// EnclosingFunction returns the innermost function whose node covers
// code[start:end]. ok is false when the language is unsupported or the span
// sits outside any function.
func (l *Locator) EnclosingFunction(path string, code []byte, start, end int) (region models.CodeRegion, ok bool) {
	g, found := l.grammars[Language(utils.DetectLanguage(path))]
	if !found || start < 0 || end > len(code) || start > end {
		return models.CodeRegion{}, false
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g.language); err != nil {
		return models.CodeRegion{}, false
	}

	tree := parser.Parse(code, nil)
	if tree == nil {
		return models.CodeRegion{}, false
	}
	defer tree.Close()

	node := tree.RootNode().DescendantForByteRange(uint(start), uint(end))
	for node != nil && !g.functionKinds[node.Kind()] {
		node = node.Parent()
	}
	if node == nil {
		return models.CodeRegion{}, false
	}

	return models.CodeRegion{
		Name:     functionName(g, node, code),
		NodeType: node.Kind(),
		Lines: models.LineRange{
			Start: int(node.StartPosition().Row) + 1,
			End:   int(node.EndPosition().Row) + 1,
		},
		Content: string(code[node.StartByte():node.EndByte()]),
	}, true
}

func functionName(g grammar, node *tree_sitter.Node, code []byte) string {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = n.Utf8Text(code)
	}

	switch node.Kind() {
	case "method_declaration":
		// Go receivers render as (*Type).Method.
		if recv := receiverType(node, code); recv != "" {
			name = fmt.Sprintf("(%s).%s", recv, name)
		}
		return name
	case "arrow_function", "function_expression", "generator_function", "func_literal":
		if name == "" {
			name = assignedName(node, code)
		}
	}
	if name == "" {
		return "<anonymous>"
	}

	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if !g.containerKinds[parent.Kind()] {
			continue
		}
		if n := parent.ChildByFieldName("name"); n != nil {
			return n.Utf8Text(code) + "." + name
		}
	}
	return name
}

func receiverType(node *tree_sitter.Node, code []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil || recv.NamedChildCount() == 0 {
		return ""
	}
	param := recv.NamedChild(0)
	if param == nil {
		return ""
	}
	if typ := param.ChildByFieldName("type"); typ != nil {
		return typ.Utf8Text(code)
	}
	return ""
}

// assignedName finds the variable or field an anonymous function is bound to.
func assignedName(node *tree_sitter.Node, code []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Kind() {
	case "variable_declarator", "pair", "field_definition":
		for _, field := range []string{"name", "key", "property"} {
			if n := parent.ChildByFieldName(field); n != nil {
				return n.Utf8Text(code)
			}
		}
	case "assignment_expression":
		if n := parent.ChildByFieldName("left"); n != nil {
			return n.Utf8Text(code)
		}
	}
	return ""
}
