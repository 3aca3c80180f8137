// Package source turns one source file into graph material: a FunctionNode
// per definition, a (caller, callee-name) pair per call expression, and a
// DynamicCodeWarning per construct that static analysis cannot follow.
//
// Per-language behavior is table-driven via lang.LanguageSpec; backends
// are selected by file extension at the orchestrator, not by inheritance.
package source

import (
	"bytes"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/callsight/callsight/internal/fqn"
	"github.com/callsight/callsight/internal/graph"
	"github.com/callsight/callsight/internal/lang"
	"github.com/callsight/callsight/internal/parser"
)

// CallSite is one call expression: the qualified name of the enclosing
// function (or the module pseudo-function) and the callee as written.
type CallSite struct {
	CallerID string
	Callee   string
	Line     int
}

// Extraction is the per-file analysis result. It is pure data: workers
// produce extractions in parallel and the orchestrator merges them into
// the graph single-threaded.
type Extraction struct {
	File     string
	Language lang.Language

	// ModuleID is the pseudo-function owning top-level statements.
	ModuleID  string
	Functions []*graph.FunctionNode
	Calls     []CallSite
	// Imports maps local names to dotted module paths for the resolver.
	Imports  map[string]string
	Warnings []graph.DynamicCodeWarning

	// HasMainGuard is set for Python files with an __main__ guard.
	HasMainGuard bool
	// HasTestDSL is set when a test-runner DSL call (it/describe) was seen.
	HasTestDSL bool
	IsTestFile bool
}

type extractor struct {
	project string
	relPath string
	source  []byte
	spec    *lang.LanguageSpec
	out     *Extraction

	funcTypes  map[string]bool
	classTypes map[string]bool
	callTypes  map[string]bool
	dynamic    *dynamicMatcher
}

// Extract parses one file and returns its functions, calls, and warnings.
// A parse failure is returned to the caller, which skips the file with a
// warning; it never aborts the scan.
func Extract(project, relPath string, src []byte, l lang.Language) (*Extraction, error) {
	spec := lang.ForLanguage(l)
	if spec == nil {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}

	src = stripBOM(src)
	tree, err := parser.Parse(l, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	out := &Extraction{
		File:       relPath,
		Language:   l,
		ModuleID:   fqn.ModuleScopeQN(project, relPath),
		IsTestFile: spec.IsTestFile(relPath),
	}

	x := &extractor{
		project:    project,
		relPath:    relPath,
		source:     src,
		spec:       spec,
		out:        out,
		funcTypes:  toSet(spec.FunctionNodeTypes),
		classTypes: toSet(spec.ClassNodeTypes),
		callTypes:  toSet(spec.CallNodeTypes),
		dynamic:    newDynamicMatcher(spec),
	}

	// Module pseudo-function first so top-level calls have an owner.
	out.Functions = append(out.Functions, &graph.FunctionNode{
		ID:            out.ModuleID,
		Name:          fqn.ModuleScopeName,
		File:          relPath,
		Line:          1,
		Language:      l,
		IsModuleScope: true,
		IsTest:        out.IsTestFile,
	})

	x.walk(tree.RootNode(), nil, out.ModuleID, &classCtx{})
	out.Imports = parseImports(tree.RootNode(), src, l, project, relPath)

	if l == lang.Python && bytes.Contains(src, []byte(`__name__`)) && bytes.Contains(src, []byte(`"__main__"`)) {
		out.HasMainGuard = true
	}
	if l == lang.Python && bytes.Contains(src, []byte(`'__main__'`)) {
		out.HasMainGuard = true
	}

	return out, nil
}

// classCtx carries per-class state down the walk. Ruby visibility modifiers
// flip the flag for all following methods in the class body.
type classCtx struct {
	private bool
}

// walk descends the AST tracking the lexical scope (class/function name
// chain) and the qualified name of the nearest enclosing function.
func (x *extractor) walk(node *tree_sitter.Node, scope []string, callerID string, cls *classCtx) {
	if node == nil {
		return
	}

	kind := node.Kind()

	// Ruby visibility markers at class-body level apply to what follows.
	if x.out.Language == lang.Ruby && kind == "identifier" {
		switch parser.NodeText(node, x.source) {
		case "private", "protected":
			cls.private = true
		case "public":
			cls.private = false
		}
	}

	if x.funcTypes[kind] {
		if fn := x.extractFunction(node, scope, cls); fn != nil {
			inner := append(append([]string{}, scope...), fn.Name)
			x.walkChildren(node, inner, fn.ID, &classCtx{})
			return
		}
		// Anonymous function: body calls attach to the enclosing caller.
		x.walkChildren(node, scope, callerID, cls)
		return
	}

	if x.classTypes[kind] {
		if name := x.classDeclName(node); name != "" {
			x.walkChildren(node, append(scope, name), callerID, &classCtx{})
			return
		}
		x.walkChildren(node, scope, callerID, cls)
		return
	}

	if x.callTypes[kind] {
		x.extractCall(node, callerID)
		// Arguments may contain nested calls and lambdas.
		x.walkChildren(node, scope, callerID, cls)
		return
	}

	x.walkChildren(node, scope, callerID, cls)
}

func (x *extractor) walkChildren(node *tree_sitter.Node, scope []string, callerID string, cls *classCtx) {
	for i := uint(0); i < node.ChildCount(); i++ {
		x.walk(node.Child(i), scope, callerID, cls)
	}
}

// extractFunction emits a FunctionNode for a named definition. Returns nil
// for anonymous functions (arrow functions, closures) with no assignable
// name.
func (x *extractor) extractFunction(node *tree_sitter.Node, scope []string, cls *classCtx) *graph.FunctionNode {
	nameNode := functionNameNode(node, x.out.Language)
	if nameNode == nil {
		return nil
	}
	name := parser.NodeText(nameNode, x.source)
	if name == "" {
		return nil
	}

	qualified := strings.Join(append(append([]string{}, scope...), name), ".")
	start := node.StartPosition()

	fn := &graph.FunctionNode{
		ID:       fqn.Compute(x.project, x.relPath, qualified),
		Name:     name,
		File:     x.relPath,
		Line:     int(start.Row) + 1,
		Column:   int(start.Column) + 1,
		Language: x.out.Language,
		IsAsync:  isAsyncFunction(node),
		IsPublic: x.isPublic(node, name, cls),
		IsTest:   x.out.IsTestFile || x.spec.IsTestFunction(name),
	}
	fn.Decorators = extractDecorators(node, x.source, x.spec)

	x.out.Functions = append(x.out.Functions, fn)
	return fn
}

// extractCall records the call site and checks it against the language's
// dynamic-code patterns.
func (x *extractor) extractCall(node *tree_sitter.Node, callerID string) {
	callee := extractCalleeName(node, x.source, x.out.Language)
	if callee == "" {
		return
	}
	line := int(node.StartPosition().Row) + 1

	x.out.Calls = append(x.out.Calls, CallSite{CallerID: callerID, Callee: callee, Line: line})

	if x.spec.IsTestEnclosingCall(callee) {
		x.out.HasTestDSL = true
	}
	if kind, ok := x.dynamic.match(callee); ok {
		x.out.Warnings = append(x.out.Warnings, graph.DynamicCodeWarning{
			File:        x.relPath,
			Line:        line,
			Kind:        kind,
			Description: "call to " + callee + " defeats static call resolution",
		})
	}
}

// classDeclName returns the declared name of a class-like node, or "" when
// the node carries no usable name (e.g. anonymous class expressions).
func (x *extractor) classDeclName(node *tree_sitter.Node) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return parser.NodeText(nameNode, x.source)
	}
	// Rust impl blocks scope their methods under the implementing type.
	if x.out.Language == lang.Rust && node.Kind() == "impl_item" {
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			return parser.NodeText(typeNode, x.source)
		}
	}
	return ""
}

// isPublic applies the language's visibility convention.
func (x *extractor) isPublic(node *tree_sitter.Node, name string, cls *classCtx) bool {
	switch x.out.Language {
	case lang.Go:
		return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
	case lang.Python:
		return !strings.HasPrefix(name, "_")
	case lang.Ruby:
		return !cls.private
	case lang.Java:
		if mods := findChildByKind(node, "modifiers"); mods != nil {
			return strings.Contains(parser.NodeText(mods, x.source), "public")
		}
		return false
	case lang.Rust:
		for i := uint(0); i < node.ChildCount(); i++ {
			if c := node.Child(i); c != nil && c.Kind() == "visibility_modifier" {
				return true
			}
		}
		return false
	default:
		// JS/TS: everything in module scope is callable once imported.
		return true
	}
}

// functionNameNode resolves the name node for a function definition,
// handling arrow functions assigned to variables and Ruby singleton
// methods.
func functionNameNode(node *tree_sitter.Node, l lang.Language) *tree_sitter.Node {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nameNode
	}

	// JS/TS: const handler = () => {} and const f = function () {}
	switch node.Kind() {
	case "arrow_function", "function_expression":
		if p := node.Parent(); p != nil && p.Kind() == "variable_declarator" {
			return p.ChildByFieldName("name")
		}
		if p := node.Parent(); p != nil && p.Kind() == "pair" {
			return p.ChildByFieldName("key")
		}
	}

	if l == lang.Ruby && node.Kind() == "singleton_method" {
		return node.ChildByFieldName("name")
	}
	return nil
}

// isAsyncFunction checks for an async modifier keyword among the
// definition's immediate children (Python async def, JS/TS async).
func isAsyncFunction(node *tree_sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "async" {
			return true
		}
	}
	return false
}

// extractDecorators collects decorator/annotation text for a definition:
// decorated_definition parents (Python), preceding decorator siblings
// (TS/TSX), modifiers annotations (Java), attribute_item siblings (Rust).
func extractDecorators(node *tree_sitter.Node, source []byte, spec *lang.LanguageSpec) []string {
	if len(spec.DecoratorNodeTypes) == 0 {
		return nil
	}
	decoKinds := toSet(spec.DecoratorNodeTypes)
	var out []string

	appendDeco := func(n *tree_sitter.Node) {
		text := strings.TrimPrefix(parser.NodeText(n, source), "@")
		text = strings.TrimPrefix(text, "#[")
		text = strings.TrimSuffix(text, "]")
		if text != "" {
			out = append(out, text)
		}
	}

	if p := node.Parent(); p != nil && p.Kind() == "decorated_definition" {
		for i := uint(0); i < p.ChildCount(); i++ {
			if c := p.Child(i); c != nil && decoKinds[c.Kind()] {
				appendDeco(c)
			}
		}
	}

	for prev := node.PrevSibling(); prev != nil && decoKinds[prev.Kind()]; prev = prev.PrevSibling() {
		appendDeco(prev)
	}

	if mods := findChildByKind(node, "modifiers"); mods != nil {
		for i := uint(0); i < mods.ChildCount(); i++ {
			if c := mods.Child(i); c != nil && decoKinds[c.Kind()] {
				appendDeco(c)
			}
		}
	}

	return out
}

func findChildByKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func stripBOM(src []byte) []byte {
	return bytes.TrimPrefix(src, []byte{0xEF, 0xBB, 0xBF})
}
