package source

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/parser"
)

// extractCalleeName returns the textual call target for a call node, as
// written in the source ("helper", "pkg.Helper", "obj.method"). An empty
// string means the target expression is too complex to name (chained
// calls, computed members) and the site is dropped.
func extractCalleeName(node *tree_sitter.Node, source []byte, l lang.Language) string {
	// Most grammars put the target in a "function" field.
	if funcNode := node.ChildByFieldName("function"); funcNode != nil {
		switch funcNode.Kind() {
		case "identifier", "simple_identifier", "attribute",
			"member_expression", "selector_expression", "field_expression",
			"scoped_identifier":
			return parser.NodeText(funcNode, source)
		}
		return ""
	}

	// Java method_invocation: name field plus optional object receiver.
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name := parser.NodeText(nameNode, source)
		if obj := node.ChildByFieldName("object"); obj != nil {
			switch obj.Kind() {
			case "identifier", "field_access", "this":
				return parser.NodeText(obj, source) + "." + name
			}
		}
		return name
	}

	// Ruby call nodes: method field with optional receiver.
	if methodNode := node.ChildByFieldName("method"); methodNode != nil {
		name := parser.NodeText(methodNode, source)
		if receiver := node.ChildByFieldName("receiver"); receiver != nil {
			switch receiver.Kind() {
			case "identifier", "constant", "self", "instance_variable":
				return parser.NodeText(receiver, source) + "." + name
			}
			return name
		}
		return name
	}

	switch node.Kind() {
	case "new_expression":
		// JS/TS: new Foo() calls the constructor.
		if ctor := node.ChildByFieldName("constructor"); ctor != nil {
			return parser.NodeText(ctor, source)
		}
	case "object_creation_expression":
		// Java: new Foo()
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			return parser.NodeText(typeNode, source)
		}
	case "macro_invocation":
		// Rust: name without the bang; nearly always a dead-end edge.
		if macroNode := node.ChildByFieldName("macro"); macroNode != nil {
			return parser.NodeText(macroNode, source)
		}
	}

	return ""
}
